package worker

import "context"

// Worker - фоновая задача, которой управляет WorkerManager
type Worker interface {
	// Start блокируется до Stop или отмены ctx
	Start(ctx context.Context) error

	// Stop сигнализирует о завершении; идемпотентен
	Stop() error

	Name() string
}
