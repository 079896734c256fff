// Package reliability runs operations with bounded, classified retries.
//
// An Executor invokes an operation, asks its Classifier what a failure
// means and either retries it (Recoverable), gives up (Terminal), or
// returns it untouched (Unclassified). How many attempts are made and how
// long to wait between them is a Policy, configured once per executor
// rather than at each call site.
//
// # Usage
//
//	exec := reliability.NewExecutor(reliability.DefaultPolicy(), classify)
//	err := exec.Execute(dev.open,
//	    func(err error) { log.Warn("open failed, retrying", "error", err) },
//	    func(err error) { log.Error("open failed", "error", err) },
//	)
//
// # Blocking
//
// Execute blocks the calling goroutine for the whole retry sequence,
// including backoff delays. Policy.MaxElapsed bounds the total duration.
package reliability
