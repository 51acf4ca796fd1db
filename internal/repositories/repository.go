package repositories

import "context"

// Repository aggregates the per-domain repository interfaces.
type Repository interface {
	// Homework domain
	Question() QuestionRepository
	Answer() AnswerRepository

	// User domain (read-mostly; account lifecycle lives elsewhere)
	User() UserRepository

	// Dashboard domain
	Dashboard() DashboardRepository

	// Transaction support; the Repository passed to fn is bound to the
	// transaction and commits when fn returns nil.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
