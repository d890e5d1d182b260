package authx

import (
	"context"

	"github.com/krancour/bizdesk/sdk/session"
	"github.com/pkg/errors"
)

var seedTenants = []session.Tenant{
	{
		ID:     "acme",
		Name:   "Acme Corporation",
		Domain: "acme.example",
	},
	{
		ID:     "globex",
		Name:   "Globex",
		Domain: "globex.example",
	},
}

// Seed registers a demo User with access to two tenants and promotes it to
// admin.
func Seed(ctx context.Context, store Store, service Service, config Config) error {
	user, err := service.Register(
		ctx,
		Registration{
			Name:     config.SeedUserName,
			Email:    config.SeedUserEmail,
			Password: config.SeedUserPassword,
		},
	)
	if err != nil {
		return errors.Wrap(err, "error seeding demo user")
	}
	for _, tenant := range seedTenants {
		if err := store.CreateTenant(ctx, tenant); err != nil {
			return errors.Wrapf(err, "error seeding tenant %q", tenant.ID)
		}
		if err := store.AddMember(ctx, tenant.ID, user.ID); err != nil {
			return errors.Wrapf(
				err,
				"error granting demo user access to tenant %q",
				tenant.ID,
			)
		}
	}
	record, err := store.GetUser(ctx, user.ID)
	if err != nil {
		return errors.Wrap(err, "error retrieving demo user")
	}
	record.Role = session.RoleAdmin
	return errors.Wrap(
		store.UpdateUser(ctx, record),
		"error promoting demo user",
	)
}
