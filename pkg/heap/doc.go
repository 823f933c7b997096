/*
Package heap provides a process-wide slab heap with package-level helpers.

# Quick Start

	p := heap.Alloc(48)
	defer heap.Free(p)

	buf := heap.Make(100)
	defer heap.Release(buf)

The default heap is created on first use with slab.DefaultConfig. To pick a
different slot capacity or fault handler, call Init before any allocation:

	cfg := slab.DefaultConfig()
	cfg.Capacity = 1024
	if err := heap.Init(cfg); err != nil {
	    log.Fatal(err)
	}

# Monitoring

Publish exposes the usage report through expvar:

	heap.Publish("slab")
	http.ListenAndServe(":8080", nil) // GET /debug/vars

All functions are safe for concurrent use.
*/
package heap
