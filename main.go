package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helpdesk/internal/auth"
	intconfig "helpdesk/internal/config"
	intdb "helpdesk/internal/db"
	"helpdesk/internal/email"
	router "helpdesk/internal/http"
	"helpdesk/internal/resetcode"
	"helpdesk/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	} else if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := intconfig.ConnectDB(env)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer intconfig.CloseDB()

	if env.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := intdb.Migrate(ctx, db.DB)
		cancel()
		if err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  env.JWTAccessSecret,
		RefreshSecret: env.JWTRefreshSecret,
		AccessTTL:     env.JWTAccessTTL,
		RefreshTTL:    env.JWTRefreshTTL,
		Issuer:        "helpdesk",
	})
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	deps := services.Deps{
		DB:               db,
		Tokens:           tokens,
		Mailer:           email.LogSender{},
		Resets:           resetcode.NewSQLStore(db),
		MailFrom:         env.MailFrom,
		MailTimeout:      10 * time.Second,
		ResetCodeTTL:     env.ResetCodeTTL,
		PasswordMinScore: env.PasswordMinScore,
		MaxOpenTickets:   env.MaxOpenTickets,
	}

	if env.RedisAddr != "" {
		client, err := resetcode.DialRedis(env.RedisAddr, env.RedisPassword, env.RedisDB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		deps.Resets = resetcode.NewRedisStore(client)
		log.Printf("[RESET] action=store msg=using redis at %s", env.RedisAddr)
	}

	if env.SMTPHost != "" {
		sender, err := email.NewSMTPSender(env.SMTPHost, env.SMTPPort, env.SMTPUsername, env.SMTPPassword, env.MailFrom)
		if err != nil {
			log.Fatalf("smtp: %v", err)
		}
		deps.Mailer = sender
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	err = services.AuthService{Deps: deps, RequestID: "startup"}.EnsureAdmin(seedCtx, services.AdminSeed{
		Email:     env.AdminEmail,
		Password:  env.AdminPassword,
		FirstName: env.AdminFirstName,
		LastName:  env.AdminLastName,
	})
	cancelSeed()
	if err != nil {
		log.Fatalf("admin seed failed: %v", err)
	}

	r := router.NewRouter(env, deps)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly.")
}
