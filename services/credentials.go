package services

import (
	"log"
	"sync"

	"support-backend-go/config"
)

var (
	Users         *UserStore
	initUsersOnce sync.Once
)

// InitUserStore loads the credential store as a singleton. The source is
// the APP_USERS line from the dotfile when present, otherwise the "users"
// table of the structured secrets file. Missing or malformed sources are
// soft failures: the process runs with zero valid users instead of
// crashing.
func InitUserStore() *UserStore {
	initUsersOnce.Do(func() {
		store := NewUserStore(config.Log)

		switch {
		case config.AppUsers != "":
			store.LoadFromJSON(config.AppUsers)
		default:
			store.LoadFromSecretsFile(config.SecretsFile)
		}

		if store.Len() == 0 {
			config.Log.Warn("No valid users loaded, all logins will fail")
		}

		Users = store
		log.Printf("✅ Credential store loaded (%d users)", store.Len())
	})

	return Users
}
