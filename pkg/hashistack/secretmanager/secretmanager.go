package secretmanager

import (
	"os"

	vault "github.com/hashicorp/vault-client-go"
	"go.uber.org/fx"
)

var Module = fx.Module("secretmanager", fx.Provide(ProvideVault))

// Enabled reports whether a vault address is configured in the environment.
func Enabled() bool {
	return os.Getenv("VAULT_ADDR") != ""
}

// ProvideVault builds a client from VAULT_ADDR, VAULT_TOKEN and friends.
func ProvideVault() (*vault.Client, error) {
	return vault.New(
		vault.WithEnvironment(),
	)
}
