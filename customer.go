package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// NewCustomer describes a customer to register.
type NewCustomer struct {
	Name  string
	Phone string
	Email string
}

// CustomerReceipt is the result of a customer registration.
type CustomerReceipt struct {
	Customer Customer
	Audit    AuditEntry
}

// Customer returns the customer registered under id.
func (b *Bank) Customer(ctx context.Context, id string) (Customer, error) {
	c, err := get[Customer](ctx, b.repo, CustomerTable, id)
	if errors.Is(err, ErrNotFound) {
		return Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return c, err
}

// Customers returns every customer in identifier order.
func (b *Bank) Customers(ctx context.Context) ([]Customer, error) {
	return list[Customer](ctx, b.repo, CustomerTable)
}

// AddCustomer registers a customer. Accounts and loans can only be opened for
// registered customers.
func (b *Bank) AddCustomer(ctx context.Context, req NewCustomer) (*CustomerReceipt, error) {
	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) < 2 {
		return nil, b.reject("customer", fmt.Errorf("%w: name %q is too short", ErrInvalidCustomer, req.Name))
	}
	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return nil, b.reject("customer", fmt.Errorf("%w: %q is not an email address", ErrInvalidCustomer, req.Email))
	}

	c := Customer{
		ID:         b.seq[CustomerTable].next(),
		Name:       name,
		Phone:      strings.TrimSpace(req.Phone),
		Email:      email,
		Registered: b.today(),
	}
	audit := b.newAudit(ctx, CustomerAdded, fmt.Sprintf("Registered customer %s (%s)", c.ID, c.Name), Success)
	if err := b.commit(ctx, c, audit); err != nil {
		return nil, err
	}
	b.log.Info("customer added", zap.String("customer", c.ID))
	return &CustomerReceipt{Customer: c, Audit: audit}, nil
}

// checkCustomer returns an error wrapping ErrNotFound unless id is registered.
func (b *Bank) checkCustomer(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: customer is required", ErrInvalidCustomer)
	}
	_, err := b.Customer(ctx, id)
	return err
}
