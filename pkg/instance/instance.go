package instance

import (
	"os"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/env"
)

// GetID identifies this process for lock ownership. MARKETPLACE_INSTANCE_ID wins,
// then the hostname, then a random id.
func GetID() string {
	if id := env.Get("MARKETPLACE_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "instance-" + uuid.NewString()[:8]
}
