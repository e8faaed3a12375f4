// Package worker runs record validations concurrently.
//
// BatchValidator validates a slice of records with a bounded number of
// goroutines and returns the results in input order. Pool is a long-lived
// set of workers fed through Submit, used when records arrive one at a time
// (for example from a stream).
//
// Example usage:
//
//	bv := worker.NewBatchValidator(eng.Validate, 4)
//	batch := bv.ValidateBatch(ctx, records)
//	defer batch.Release()
//
//	for _, jr := range batch.Results {
//	    if jr.Error != nil {
//	        // cancelled before the record was evaluated
//	        continue
//	    }
//	    fmt.Println(jr.Index, jr.Result.Valid)
//	}
package worker
