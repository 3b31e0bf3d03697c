package permissions

import (
	_ "embed"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed permissions.yaml
var permissionsData []byte

type Permission struct {
	Permissions []string `yaml:"permissions"`
	Path        string   `yaml:"path"`
	Method      string   `yaml:"method"`
	Skip        bool     `yaml:"skip"`
}

type PermissionData struct {
	Endpoints []Permission `yaml:"endpoints"`
	Skip      bool         `yaml:"skip"`
}

// Lookup finds the entry for a chi route pattern. Subrouter roots ("/v1/users/") match their
// slash-less entry.
func (r *PermissionData) Lookup(path, method string) (Permission, bool) {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return rp.Path == path && strings.EqualFold(rp.Method, method)
	})

	if idx == -1 {
		return Permission{}, false
	}

	return r.Endpoints[idx], true
}

func (r *PermissionData) FindPermissions(path, method string) Permission {
	permission, _ := r.Lookup(path, method)

	return permission
}

// Allows reports whether role may call the endpoint. An entry without roles admits any
// authenticated caller.
func (p Permission) Allows(role string) bool {
	return len(p.Permissions) == 0 || slices.Contains(p.Permissions, role)
}

func Parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := yaml.Unmarshal(data, &permissions); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &permissions, nil
}

func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return permissions
}
