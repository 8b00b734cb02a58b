/*
Package config loads worldtick server settings from YAML or JSON.

# Overview

Config wraps a decoded document and extracts values with defaults, so a
missing or mistyped key never fails a load on its own. Settings is the typed
view the server actually uses; Load validates it.

	settings, err := config.LoadFile("") // reads worldtick.yaml
	if err != nil {
	    log.Fatal(err)
	}

	provider, _ := settings.Provider()   // bounded affinity provider
	store, _ := settings.OpenDeadLetters()
	n := node.New(node.WithPolicy(settings.Policy()), node.WithDeadLetters(store))

# File layout

	scheduler:
	  pool_size: 8
	  strategy: region
	events:
	  remove_on_invalid: false
	  remove_on_error: false
	  dead_letter:
	    driver: sqlite
	    path: ./deadletter.db
	    max_size: 10000

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
