package outbound

// TaskDispatcher runs fire-and-forget work. *ants.Pool satisfies it.
type TaskDispatcher interface {
	Submit(task func()) error
}
