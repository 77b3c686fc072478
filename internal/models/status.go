package models

import "time"

// SystemStatus 管理端概览
type SystemStatus struct {
	Tasks          map[TaskStatus]int64 `json:"tasks"`
	PendingReviews int64                `json:"pending_reviews"`
	Host           HostStatus           `json:"host"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

type HostStatus struct {
	Hostname    string  `json:"hostname"`
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage float64 `json:"memory_usage"`
	Uptime      uint64  `json:"uptime"`
}
