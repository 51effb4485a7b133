package generator

// Generator is implemented by the deployment file generators (config.yaml,
// Caddyfile, happy.env). The Options type parameter allows each
// implementation to define its own options structure.
type Generator[T any, Options any] interface {
	Generate(model T, opts Options) (string, error)
}
