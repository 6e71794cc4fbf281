package users

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// DatabaseConfig points at either a local sqlite file or a remote libsql
// database, the remote one wins when Url is set.
type DatabaseConfig struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config DatabaseConfig) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		target := config.Url
		if len(values) > 0 {
			target += "?" + values.Encode()
		}
		return sql.Open("libsql", target)
	}

	if config.File == "" {
		return nil, fmt.Errorf("users: neither a database file nor url was specified")
	}
	if config.File != ":memory:" {
		_, statErr := os.Stat(config.File)
		if os.IsNotExist(statErr) {
			f, err := os.Create(config.File)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// sqlite does not cope well with concurrent writers
	db.SetMaxOpenConns(1)
	if config.File != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
