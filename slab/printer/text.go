package printer

import (
	"fmt"
	"text/tabwriter"

	"github.com/joshuapare/slabkit/slab"
)

func (p *Printer) usageText(usage []slab.Usage) error {
	if len(usage) == 0 {
		_, err := fmt.Fprintln(p.writer, "no memory regions allocated")
		return err
	}

	tw := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "NODE\tSIZE\tOBJECTS\tSLOTS\tCAPACITY\tAVAILABLE\t")

	var objects, slots int
	var capacity, available int64
	for i, u := range usage {
		p.num.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t\n",
			i, u.ObjectSize, u.InUse(), u.Capacity, u.CapacityBytes(), u.AvailableBytes())
		objects += u.InUse()
		slots += u.Capacity
		capacity += u.CapacityBytes()
		available += u.AvailableBytes()
	}
	if p.opts.Totals {
		p.num.Fprintf(tw, "total\t\t%d\t%d\t%d\t%d\t\n", objects, slots, capacity, available)
	}
	return tw.Flush()
}

func (p *Printer) statsText(st slab.Stats) error {
	tw := tabwriter.NewWriter(p.writer, 0, 0, 1, ' ', 0)
	p.num.Fprintf(tw, "Nodes:\t%d\n", st.Nodes)
	p.num.Fprintf(tw, "Size classes:\t%d\n", st.Classes)
	p.num.Fprintf(tw, "Mapped bytes:\t%d\n", st.MappedBytes)
	p.num.Fprintf(tw, "Allocations:\t%d\n", st.Allocs)
	p.num.Fprintf(tw, "Frees:\t%d\n", st.Frees)
	p.num.Fprintf(tw, "Live objects:\t%d\n", st.Live)
	p.num.Fprintf(tw, "Faults:\t%d\n", st.Faults)
	return tw.Flush()
}
