package printer

import (
	"encoding/json"

	"github.com/joshuapare/slabkit/slab"
)

// jsonUsage represents one node row in JSON format.
type jsonUsage struct {
	Node      int   `json:"node"`
	Size      int   `json:"size"`
	Objects   int   `json:"objects"`
	Slots     int   `json:"slots"`
	Capacity  int64 `json:"capacity"`
	Available int64 `json:"available"`
}

// jsonReport combines usage rows and stats in one document.
type jsonReport struct {
	Usage []jsonUsage `json:"usage"`
	Stats slab.Stats  `json:"stats"`
}

func (p *Printer) usageJSON(usage []slab.Usage) error {
	return p.encode(p.usageRows(usage))
}

func (p *Printer) usageRows(usage []slab.Usage) []jsonUsage {
	rows := make([]jsonUsage, 0, len(usage))
	for i, u := range usage {
		rows = append(rows, jsonUsage{
			Node:      i,
			Size:      u.ObjectSize,
			Objects:   u.InUse(),
			Slots:     u.Capacity,
			Capacity:  u.CapacityBytes(),
			Available: u.AvailableBytes(),
		})
	}
	return rows
}

func (p *Printer) statsJSON(st slab.Stats) error {
	return p.encode(st)
}

func (p *Printer) encode(v any) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
