package repository

import (
	"context"
	"fmt"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

// AccountRepo loads the three role files (customers, admins, front desk
// staff) into a single flat account list tagged by role.
type AccountRepo struct {
	store *jsonstore.Store
}

func NewAccountRepo(store *jsonstore.Store) *AccountRepo {
	return &AccountRepo{store: store}
}

func (r *AccountRepo) All(ctx context.Context) ([]*domain.Account, error) {
	const op = "repository.AccountRepo.All"

	var accounts []*domain.Account
	for _, src := range []struct {
		col  string
		role domain.Role
	}{
		{colCustomers, domain.RoleCustomer},
		{colAdmins, domain.RoleAdmin},
		{colStaff, domain.RoleStaff},
	} {
		var recs []AccountRecord
		if err := r.store.Load(src.col, &recs); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, rec := range recs {
			accounts = append(accounts, accountFromRecord(rec, src.role))
		}
	}

	return accounts, nil
}

func (r *AccountRepo) AppendCustomer(ctx context.Context, a *domain.Account) error {
	const op = "repository.AccountRepo.AppendCustomer"

	var recs []AccountRecord
	err := r.store.Update(colCustomers, &recs, func() error {
		recs = append(recs, AccountRecord{
			Name:     a.Name,
			Address:  a.Address,
			Email:    a.Email,
			Phone:    a.Phone,
			Username: a.Username,
			Password: a.Password,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func accountFromRecord(rec AccountRecord, role domain.Role) *domain.Account {
	return &domain.Account{
		Name:     rec.Name,
		Address:  rec.Address,
		Email:    rec.Email,
		Phone:    rec.Phone,
		Username: rec.Username,
		Password: rec.Password,
		Role:     role,
	}
}
