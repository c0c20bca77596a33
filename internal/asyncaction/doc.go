// Package asyncaction models the lifecycle of a user-triggered asynchronous
// operation as a small tagged value.
//
// # Variants
//
//	Uninitialized ──> Confirming ──> Success(Unit)
//	      │
//	      └────────> Loading ──> Success(T) | Failure(error)
//
// An Action has no mutators. Callers move between variants by replacing the
// stored value with a freshly constructed one, which keeps a single variant
// active at any time and means a Loading value can never carry an old error.
// Success and Failure remain in place until the owner resets the action to
// Uninitialized, typically after the UI has acted on the result.
//
// # Usage Example
//
//	save := asyncaction.Loading[asyncaction.Unit]()
//	save = asyncaction.Run(ctx, func(ctx context.Context) (asyncaction.Unit, error) {
//		return asyncaction.Unit{}, room.UpdatePermissions(ctx, edited)
//	})
//	if err := save.Err(); err != nil {
//		// render the failure, keep the edits
//	}
//
// The same type backs both the save flow (Loading/Success/Failure) and the
// confirm-before-discard flow (Confirming/Success).
package asyncaction
