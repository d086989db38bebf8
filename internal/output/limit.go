package output

const (
	// reserved descriptors are left for inputs, stdio and the runtime.
	reserved = 32
	// maxLimit caps the default on hosts with a huge or unlimited ceiling.
	maxLimit      = 4096
	fallbackLimit = 256
)
