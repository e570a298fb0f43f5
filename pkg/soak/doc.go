// Package soak stress-tests a buffer.Ring with concurrent producers, consumers
// and an observer, and reports whether the ring's guarantees held.
//
// Producers enqueue tagged items, optionally paced by a token bucket. Consumers
// dequeue until the producers finish. The observer repeatedly samples Count
// and ToSlice while the run is in progress. A run records a violation when:
//
//   - an observed count or snapshot falls outside [0, Capacity]
//   - a snapshot or a consumer sees one producer's items out of order
//   - more items were dequeued than enqueued
//   - enqueued != dequeued + evicted + final count
//   - anything was evicted with overwrite disabled
//
// Usage:
//
//	report, err := soak.Run(ctx, soak.Config{
//		Capacity:         50,
//		Producers:        4,
//		ItemsPerProducer: 250,
//		AllowOverwrite:   true,
//	})
//	if err != nil {
//		return err
//	}
//	if !report.OK() {
//		for _, v := range report.Violations {
//			log.Println(v)
//		}
//	}
package soak
