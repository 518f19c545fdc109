package handlers

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// Check reports process liveness plus basic host load. Host metrics are
// best-effort and omitted when the probes fail.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"status": "OK",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		data["cpuPercent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		data["memPercent"] = vm.UsedPercent
	}

	RespondSuccess(w, http.StatusOK, "Server is running", data)
}
