package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Sjf12/AACL/internal/core/domain"
)

// DefaultAccounts is the seed used when no accounts file exists
func DefaultAccounts() []domain.Account {
	return []domain.Account{
		{ID: "123", DisplayName: "Alice Johnson", Balance: domain.NewMoney(5000, 0)},
		{ID: "456", DisplayName: "Bob Smith", Balance: domain.NewMoney(2500, 0)},
		{ID: "789", DisplayName: "Charlie Lee", Balance: domain.NewMoney(10000, 0)},
	}
}

// LoadAccountsFile reads an "id|name|balance" file.
// A missing file is reported as an error wrapping os.ErrNotExist.
func LoadAccountsFile(path string) ([]domain.Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open accounts file: %w", err)
	}
	defer f.Close()

	accounts, err := ParseAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return accounts, nil
}

// ParseAccounts parses one account per line. The first line may be a
// header ("id|name|balance"); blank lines are skipped.
func ParseAccounts(r io.Reader) ([]domain.Account, error) {
	var accounts []domain.Account

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: want id|name|balance, got %q", lineNo, line)
		}

		balance, err := domain.ParseMoney(parts[2])
		if err != nil {
			// Header row
			if lineNo == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		accounts = append(accounts, domain.Account{
			ID:          strings.TrimSpace(parts[0]),
			DisplayName: strings.TrimSpace(parts[1]),
			Balance:     balance,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}
