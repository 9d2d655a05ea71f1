package ledger

// State describes the minimal functionality the engine needs from the
// surrounding persistence layer. state.Manager satisfies it in production;
// tests run it over an in-memory database.
type State interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVHas(key []byte) (bool, error)
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out *[][]byte) error
}
