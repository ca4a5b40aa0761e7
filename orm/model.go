package orm

// Model is implemented by any entity that can be stored using ModelBucket.
// Models are serialized with the amino codec, so they must be plain structs
// with explicitly sized integer fields.
type Model interface {
	// Validate returns error if the model is not in a valid state to save
	// to the db (eg. field missing, out of range, ...)
	Validate() error
}
