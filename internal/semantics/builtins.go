package semantics

// Fixed runtime helper symbols the generator references directly, never
// through GlobalContext lookup (spec.md §6, "Runtime helpers the generator
// references by fixed symbol").
const (
	RuntimeStringConcat = "_bltn_string_concat"
	RuntimeStringEq     = "_bltn_string_eq"
	RuntimeStringNe     = "_bltn_string_ne"
	RuntimeMalloc       = "_bltn_malloc"
	RuntimeAllocArray   = "_bltn_alloc_array"
)
