// Package dotenvgenerator renders the happy.env secrets file for a deployment.
package dotenvgenerator

import (
	"fmt"
	"strconv"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/fsutil"
	yamlgenerator "github.com/Jaydooooooo/happy-code/pkg/io/generator/yaml"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Environment keys written to happy.env.
const (
	// DatabasePasswordKey feeds both the postgres container and the server DSN.
	DatabasePasswordKey = "POSTGRES_PASSWORD"
	// MasterSecretKey is the secret the server derives auth tokens from.
	MasterSecretKey = "HANDY_MASTER_SECRET"
	// DatabaseURLKey is the server's postgres connection string.
	DatabaseURLKey = "DATABASE_URL"
	// RedisURLKey is the server's redis connection string.
	RedisURLKey = "REDIS_URL"
	// ServerPortKey is the port the server listens on inside its container.
	ServerPortKey = "PORT"
)

// DotenvGenerator generates the environment file consumed by the server and
// database containers. Values already present in the output file survive
// regeneration, so secrets are minted exactly once per deployment.
type DotenvGenerator struct{}

// NewDotenvGenerator creates and returns a new DotenvGenerator instance.
func NewDotenvGenerator() *DotenvGenerator {
	return &DotenvGenerator{}
}

// Generate renders the env file and writes it to the specified output.
func (g *DotenvGenerator) Generate(
	deployment *v1alpha1.Deployment,
	opts yamlgenerator.Options,
) (string, error) {
	env := buildEnv(deployment, readExisting(opts.Output))

	content, err := godotenv.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to marshal env file: %w", err)
	}

	content += "\n"

	if opts.Output != "" {
		result, err := fsutil.TryWriteFile(content, opts.Output, opts.Force)
		if err != nil {
			return "", fmt.Errorf("failed to write env file: %w", err)
		}

		return result, nil
	}

	return content, nil
}

// readExisting loads the current env file so secrets survive re-runs.
// A missing or unreadable file yields an empty map.
func readExisting(path string) map[string]string {
	if path == "" {
		return map[string]string{}
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return map[string]string{}
	}

	return env
}

// buildEnv fills the required keys around whatever the existing file already
// holds. Operator-added keys pass through untouched.
func buildEnv(deployment *v1alpha1.Deployment, existing map[string]string) map[string]string {
	env := make(map[string]string, len(existing))
	for key, value := range existing {
		env[key] = value
	}

	setIfMissing(env, DatabasePasswordKey, uuid.NewString)
	setIfMissing(env, MasterSecretKey, uuid.NewString)

	user := deployment.Spec.Database.User
	if user == "" {
		user = v1alpha1.DefaultDatabaseUser
	}

	name := deployment.Spec.Database.Name
	if name == "" {
		name = v1alpha1.DefaultDatabaseName
	}

	setIfMissing(env, DatabaseURLKey, func() string {
		return fmt.Sprintf(
			"postgresql://%s:%s@%s:%d/%s",
			user,
			env[DatabasePasswordKey],
			v1alpha1.ComponentDatabase,
			v1alpha1.DatabasePort,
			name,
		)
	})

	setIfMissing(env, RedisURLKey, func() string {
		return fmt.Sprintf("redis://%s:%d", v1alpha1.ComponentCache, v1alpha1.CachePort)
	})

	port := deployment.Spec.Server.Port
	if port == 0 {
		port = v1alpha1.DefaultServerPort
	}

	setIfMissing(env, ServerPortKey, func() string {
		return strconv.Itoa(int(port))
	})

	return env
}

// setIfMissing generates a value only when the key is absent or empty.
func setIfMissing(env map[string]string, key string, generate func() string) {
	if value, ok := env[key]; ok && value != "" {
		return
	}

	env[key] = generate()
}
