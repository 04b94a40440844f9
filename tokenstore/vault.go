package tokenstore

import (
	"context"

	vault "github.com/hashicorp/vault/api"
	auth "github.com/hashicorp/vault/api/auth/approle"

	"github.com/petrodata/brentdash/errors"
)

type VaultConfig struct {
	Address   string
	RoleId    string
	SecretId  string
	MountPath string
	SecretKey string
	Field     string
}

// VaultSource reads the dashboard API token from a Vault KV v2 secret,
// authenticating with AppRole.
type VaultSource struct {
	client *vault.Client
	cfg    VaultConfig
}

func NewVaultSource(ctx context.Context, cfg VaultConfig) (*VaultSource, error) {
	client, err := vault.NewClient(&vault.Config{
		Address: cfg.Address,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create vault client")
	}

	appRoleAuth, err := auth.NewAppRoleAuth(cfg.RoleId, &auth.SecretID{FromString: cfg.SecretId})
	if err != nil {
		return nil, errors.Wrap(err, "unable to initialize approle auth method")
	}

	authInfo, err := client.Auth().Login(ctx, appRoleAuth)
	if err != nil {
		return nil, errors.Wrap(err, "vault approle login failed")
	}
	if authInfo == nil {
		return nil, errors.New("no auth info was returned after vault login")
	}

	return &VaultSource{client: client, cfg: cfg}, nil
}

func (v *VaultSource) Token(ctx context.Context) (string, error) {
	secret, err := v.client.KVv2(v.cfg.MountPath).Get(ctx, v.cfg.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "unable to read token secret")
	}

	value, ok := secret.Data[v.cfg.Field]
	if !ok {
		return "", nil
	}
	token, ok := value.(string)
	if !ok {
		return "", errors.Newf("token secret field '%s' is not a string", v.cfg.Field)
	}

	return token, nil
}
