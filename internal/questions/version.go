package questions

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/nashtech/odmat/internal/store"
)

// NewerThan reports whether the bank's version is strictly greater than v.
// An invalid or empty v is treated as older than any valid version.
func (b *Bank) NewerThan(v string) bool {
	if !semver.IsValid(b.version) {
		return false
	}
	if !semver.IsValid(v) {
		return true
	}
	return semver.Compare(b.version, v) > 0
}

// Seed stores the bank in repo unless a bank with the same or a newer
// version is already there. force stores it regardless. It reports whether
// anything was written.
func Seed(ctx context.Context, repo store.BankRepo, b *Bank, raw []byte, force bool) (bool, error) {
	latest, err := repo.LatestBank(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("read stored bank: %w", err)
	}
	if !force && latest != nil && !b.NewerThan(latest.Version) {
		return false, nil
	}
	if err := repo.SaveBank(ctx, store.BankRecord{Version: b.Version(), Content: raw}); err != nil {
		return false, fmt.Errorf("store bank %s: %w", b.Version(), err)
	}
	return true, nil
}

// Load returns whichever is newer: the embedded bank or the latest bank
// stored in repo. A nil repo yields the embedded bank.
func Load(ctx context.Context, repo store.BankRepo) (*Bank, error) {
	def := Default()
	if repo == nil {
		return def, nil
	}
	latest, err := repo.LatestBank(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stored bank: %w", err)
	}
	if semver.IsValid(latest.Version) && semver.Compare(latest.Version, def.Version()) > 0 {
		b, err := Parse(latest.Content)
		if err != nil {
			return nil, fmt.Errorf("stored bank %s: %w", latest.Version, err)
		}
		return b, nil
	}
	return def, nil
}
