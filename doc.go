// Package dbtprofiles turns typed warehouse configuration objects into the
// profiles.yml document dbt reads its connection profiles from.
//
// The core is a single flattening algorithm over typed config objects:
// declared fields, nested credentials, and an open extras map merge into one
// flat key/value mapping with duplicate-key detection and secret unwrapping.
// Warehouse specifics live in adapter packages that register themselves at
// import time, so a binary opts into exactly the adapters it links:
//
//	import (
//	    "github.com/robfreedy/dbtprofiles/pkg/adapter"
//	    "github.com/robfreedy/dbtprofiles/pkg/configs"
//
//	    _ "github.com/robfreedy/dbtprofiles/pkg/adapter/postgres"
//	)
//
//	target, err := adapter.NewTargetConfigs("postgres", "analytics", map[string]interface{}{
//	    "host":     "db.internal",
//	    "user":     "dbt",
//	    "password": "${DBT_PASSWORD}",
//	    "dbname":   "warehouse",
//	})
//	if err != nil {
//	    // unknown adapters and bad credentials fail here, at construction
//	}
//
//	profile := configs.NewProfile("analytics", "dev", target)
//	path, err := configs.WriteProfiles(dir, profile)
//
// Secrets are held in secret.Secret wrappers that redact themselves in logs,
// JSON, and YAML; the flattener reveals them only at the point of emission
// into the rendered document.
package dbtprofiles
