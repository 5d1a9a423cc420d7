package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/mkasonde/pvc-portal/internal/modules/auth"
	"github.com/mkasonde/pvc-portal/internal/stub"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatal("Error loading .env file")
		}
	}

	jwtKey := os.Getenv("STUB_JWT_SECRET")
	if jwtKey == "" {
		jwtKey = "stub-dev-secret"
	}
	addr := os.Getenv("STUB_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Mount("/", stub.New([]byte(jwtKey)).Router())

	log.Printf("Stub portal backend listening on %s", addr)
	log.Printf("Demo accounts: %s / %s and %s / %s",
		auth.DemoAdminEmail, auth.DemoAdminPassword,
		stub.DemoVendorEmail, stub.DemoVendorPassword)
	log.Fatal(http.ListenAndServe(addr, router))
}
