// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/equanimity/equanimity/internal/auth"
	authpg "github.com/equanimity/equanimity/internal/auth/postgres"
	profilepg "github.com/equanimity/equanimity/internal/profile/postgres"
	"github.com/equanimity/equanimity/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container and applies the schema.
func setupPostgresContainer() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("equanimity_test"),
		postgres.WithUsername("equanimity"),
		postgres.WithPassword("equanimity"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		pool.Close()
		return nil, nil, err
	}
	_ = migrator.Close()

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

var _ = Describe("Auth Postgres", Ordered, func() {
	var (
		pool        *pgxpool.Pool
		cleanup     func()
		registrar   *authpg.Registrar
		credentials *authpg.CredentialRepository
		sessions    *authpg.SessionRepository
		profiles    *profilepg.ProfileRepository
	)

	BeforeAll(func() {
		var err error
		pool, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())

		registrar = authpg.NewRegistrar(pool)
		credentials = authpg.NewCredentialRepository(pool)
		sessions = authpg.NewSessionRepository(pool)
		profiles = profilepg.NewProfileRepository(pool)
	})

	AfterAll(func() {
		cleanup()
	})

	Describe("Registrar", func() {
		It("creates a credential and its profile together", func() {
			ctx := context.Background()
			cred, err := auth.NewCredential("alice", "salt-1", "hash-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(registrar.CreateUser(ctx, cred)).To(Succeed())
			Expect(cred.ProfileRef).NotTo(BeEmpty())

			stored, err := credentials.Get(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.PasswordHash).To(Equal("hash-1"))
			Expect(stored.ProfileRef).To(Equal(cred.ProfileRef))

			p, err := profiles.Get(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID.String()).To(Equal(cred.ProfileRef))
			Expect(p.OnboardingComplete).To(BeFalse())
		})

		It("rejects a duplicate username without leaving a profile behind", func() {
			ctx := context.Background()
			cred, err := auth.NewCredential("bob", "salt-2", "hash-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(registrar.CreateUser(ctx, cred)).To(Succeed())
			firstRef := cred.ProfileRef

			again, err := auth.NewCredential("bob", "salt-3", "hash-3")
			Expect(err).NotTo(HaveOccurred())
			err = registrar.CreateUser(ctx, again)
			Expect(err).To(MatchError(auth.ErrDuplicateUsername))

			stored, err := credentials.Get(ctx, "bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.PasswordHash).To(Equal("hash-2"))
			Expect(stored.ProfileRef).To(Equal(firstRef))

			var count int
			err = pool.QueryRow(ctx, "SELECT COUNT(*) FROM profiles WHERE username = $1", "bob").Scan(&count)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("admits exactly one of several concurrent registrations", func() {
			ctx := context.Background()
			const attempts = 8

			errs := make([]error, attempts)
			var wg sync.WaitGroup
			for i := range attempts {
				wg.Add(1)
				go func() {
					defer wg.Done()
					cred, err := auth.NewCredential("carol", fmt.Sprintf("salt-%d", i), fmt.Sprintf("hash-%d", i))
					if err != nil {
						errs[i] = err
						return
					}
					errs[i] = registrar.CreateUser(ctx, cred)
				}()
			}
			wg.Wait()

			succeeded, duplicates := 0, 0
			for _, err := range errs {
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, auth.ErrDuplicateUsername):
					duplicates++
				default:
					Expect(err).NotTo(HaveOccurred())
				}
			}
			Expect(succeeded).To(Equal(1))
			Expect(duplicates).To(Equal(attempts - 1))

			var count int
			err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM credentials WHERE username = $1", "carol").Scan(&count)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))

			err = pool.QueryRow(ctx, "SELECT COUNT(*) FROM profiles WHERE username = $1", "carol").Scan(&count)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})
	})

	Describe("CredentialRepository", func() {
		It("reports existence correctly", func() {
			ctx := context.Background()
			exists, err := credentials.Exists(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = credentials.Exists(ctx, "nobody")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("maps unknown usernames to not found", func() {
			_, err := credentials.Get(context.Background(), "nobody")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("SessionRepository", func() {
		It("stores and finds an active session", func() {
			ctx := context.Background()
			session, err := auth.NewSession("active-token", "alice", time.Now().UTC())
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions.Put(ctx, session)).To(Succeed())

			found, err := sessions.FindByToken(ctx, "active-token")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Username).To(Equal("alice"))

			found, err = sessions.FindActiveByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Token).To(Equal("active-token"))
		})

		It("does not return expired sessions", func() {
			ctx := context.Background()
			expired := &auth.Session{
				Token:     "expired-token",
				Username:  "bob",
				IssuedAt:  time.Now().UTC().Add(-8 * 24 * time.Hour),
				ExpiresAt: time.Now().UTC().Add(-24 * time.Hour),
			}
			Expect(sessions.Put(ctx, expired)).To(Succeed())

			_, err := sessions.FindByToken(ctx, "expired-token")
			Expect(err).To(MatchError(auth.ErrNotFound))

			_, err = sessions.FindActiveByUsername(ctx, "bob")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})

		It("sweeps only expired sessions", func() {
			ctx := context.Background()
			swept, err := sessions.SweepExpired(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(swept).To(BeNumerically(">=", int64(1)))

			var count int
			err = pool.QueryRow(ctx, "SELECT COUNT(*) FROM sessions WHERE token = $1", "expired-token").Scan(&count)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(0))

			_, err = sessions.FindByToken(ctx, "active-token")
			Expect(err).NotTo(HaveOccurred())
		})

		It("refreshes an existing token on conflict", func() {
			ctx := context.Background()
			session, err := auth.NewSession("active-token", "alice", time.Now().UTC().Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions.Put(ctx, session)).To(Succeed())

			found, err := sessions.FindByToken(ctx, "active-token")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ExpiresAt.Unix()).To(Equal(session.ExpiresAt.Unix()))
		})
	})
})
