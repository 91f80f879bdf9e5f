package postgres

import "github.com/tinoosan/bankledger/internal/service/account"

var _ account.Persister = (*Store)(nil)
