package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"blogapi/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	full := config.DatabaseConfig{
		Host:              "db",
		Port:              "5432",
		User:              "blog",
		Password:          "s3cret",
		Name:              "blog",
		SSLMode:           "disable",
		ApplicationName:   "blogapi",
		ConnectTimeoutSec: 5,
	}

	tests := []struct {
		name    string
		mutate  func(c *config.DatabaseConfig)
		want    string
		wantErr string
	}{
		{
			name: "all components",
			want: "postgres://blog:s3cret@db:5432/blog?application_name=blogapi&connect_timeout=5&sslmode=disable",
		},
		{
			name: "no password no options",
			mutate: func(c *config.DatabaseConfig) {
				*c = config.DatabaseConfig{Host: "db", Port: "5432", User: "blog", Name: "blog"}
			},
			want: "postgres://blog@db:5432/blog",
		},
		{
			name: "password is escaped",
			mutate: func(c *config.DatabaseConfig) {
				c.Password = "p@ss/word"
				c.ApplicationName = ""
				c.ConnectTimeoutSec = 0
			},
			want: "postgres://blog:p%40ss%2Fword@db:5432/blog?sslmode=disable",
		},
		{
			name: "url wins",
			mutate: func(c *config.DatabaseConfig) {
				c.URL = "postgres://other@elsewhere/x"
				c.Host = ""
			},
			want: "postgres://other@elsewhere/x",
		},
		{
			name: "missing fields are listed",
			mutate: func(c *config.DatabaseConfig) {
				c.Host = ""
				c.Name = ""
			},
			wantErr: "invalid database config: missing host, name",
		},
		{
			name: "empty",
			mutate: func(c *config.DatabaseConfig) {
				*c = config.DatabaseConfig{}
			},
			wantErr: "invalid database config: missing host, port, user, name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := full
			if tt.mutate != nil {
				tt.mutate(&c)
			}
			got, err := BuildPostgresDSN(c)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// stubOpen makes NewPostgres hand out db instead of dialing.
func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { sqlOpen = orig })
}

func fastRetries(t *testing.T) {
	t.Helper()
	orig := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = orig })
}

func TestNewPostgres(t *testing.T) {
	conf := config.DatabaseConfig{
		Host:               "localhost",
		Port:               "5432",
		User:               "blog",
		Name:               "blog",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
		ConnectTimeoutSec:  1,
		ConnectRetries:     2,
	}

	t.Run("ready on first ping", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)

		mock.ExpectPing()

		got, err := NewPostgres(context.Background(), conf)
		require.NoError(t, err)
		assert.Equal(t, 10, got.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ready after retries", func(t *testing.T) {
		fastRetries(t)
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing()

		_, err = NewPostgres(context.Background(), conf)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up", func(t *testing.T) {
		fastRetries(t)
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)

		for i := 0; i < 3; i++ {
			mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		}
		mock.ExpectClose()

		got, err := NewPostgres(context.Background(), conf)
		assert.EqualError(t, err, "db ping after 3 attempts: connection refused")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		ctx, cancel := context.WithCancel(context.Background())
		orig := retryDelay
		retryDelay = time.Hour
		t.Cleanup(func() { retryDelay = orig })
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err = NewPostgres(ctx, conf)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("open error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))

		got, err := NewPostgres(context.Background(), conf)
		assert.EqualError(t, err, "sql open: open error")
		assert.Nil(t, got)
	})

	t.Run("invalid config", func(t *testing.T) {
		got, err := NewPostgres(context.Background(), config.DatabaseConfig{})
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}
