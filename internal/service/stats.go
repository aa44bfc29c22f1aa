package service

import (
	"github.com/edflow/edflow/internal/domain/alert"
	"github.com/edflow/edflow/internal/domain/bed"
	"github.com/edflow/edflow/internal/domain/patient"
)

// CensusStats is the department dashboard read model, computed on demand
// from a point-in-time snapshot rather than on every mutation.
type CensusStats struct {
	ActivePatients int                    `json:"active_patients"`
	ByAcuity       map[int]int            `json:"by_acuity"`
	ByStatus       map[patient.Status]int `json:"by_status"`

	BedsTotal     int     `json:"beds_total"`
	BedsOccupied  int     `json:"beds_occupied"`
	BedsAvailable int     `json:"beds_available"`
	BedsCleaning  int     `json:"beds_cleaning"`
	BedsBlocked   int     `json:"beds_blocked"`
	OccupancyRate float64 `json:"occupancy_rate"`

	AverageWaitMinutes float64 `json:"average_wait_minutes"`
	LongestWaitMinutes int     `json:"longest_wait_minutes"`

	UnacknowledgedAlerts int `json:"unacknowledged_alerts"`
}

// ComputeStats is a pure function over snapshots; it never touches the
// registries directly.
func ComputeStats(queue []*patient.Patient, beds []*bed.Bed, openAlerts []*alert.Activation) CensusStats {
	stats := CensusStats{
		ActivePatients:       len(queue),
		ByAcuity:             make(map[int]int),
		ByStatus:             make(map[patient.Status]int),
		BedsTotal:            len(beds),
		UnacknowledgedAlerts: len(openAlerts),
	}

	totalWait := 0
	for _, p := range queue {
		stats.ByAcuity[p.AcuityLevel]++
		stats.ByStatus[p.Status]++
		totalWait += p.WaitMinutes
		if p.WaitMinutes > stats.LongestWaitMinutes {
			stats.LongestWaitMinutes = p.WaitMinutes
		}
	}
	if len(queue) > 0 {
		stats.AverageWaitMinutes = float64(totalWait) / float64(len(queue))
	}

	for _, b := range beds {
		switch b.Status {
		case bed.StatusOccupied:
			stats.BedsOccupied++
		case bed.StatusAvailable:
			stats.BedsAvailable++
		case bed.StatusCleaning:
			stats.BedsCleaning++
		case bed.StatusBlocked:
			stats.BedsBlocked++
		}
	}
	if stats.BedsTotal > 0 {
		stats.OccupancyRate = float64(stats.BedsOccupied) / float64(stats.BedsTotal)
	}

	return stats
}
