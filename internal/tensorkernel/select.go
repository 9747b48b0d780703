package tensorkernel

// Select picks the first available backend in accelerator-first order,
// unless forceFallback is set (spec.md §4.1: "a configuration flag may
// force the fallback"), in which case DenseBackend is always returned.
func Select(forceFallback bool) Backend {
	if !forceFallback {
		gpu := NewGPUBackend()
		if gpu.Available() {
			return gpu
		}
	}
	return NewDenseBackend()
}
