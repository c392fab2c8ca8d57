package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"contractflow/api"
	"contractflow/auth"
	"contractflow/contract"
	"contractflow/verify"
)

func main() {
	port := envDefault("PORT", "8080")

	secret := os.Getenv("ROLE_TOKEN_SECRET")
	if secret == "" {
		log.Fatalf("bootstrap: ROLE_TOKEN_SECRET is required")
	}
	verifyBase := os.Getenv("VERIFY_BASE_URL")
	if verifyBase == "" {
		log.Fatalf("bootstrap: VERIFY_BASE_URL is required")
	}

	verifier := verify.NewClient(verifyBase, os.Getenv("VERIFY_API_KEY"))
	timeout := time.Duration(envIntDefault("VERIFY_TIMEOUT_SECONDS", 30)) * time.Second

	ctrl := contract.NewController(verifier).WithVerifyTimeout(timeout)
	tokens := auth.NewService(secret)
	router := api.NewRouter(ctrl, tokens)

	log.Printf("contract api listening on :%s (contract %s)", port, ctrl.Snapshot().ID)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Fatalf("bootstrap: %s must be a positive integer, got %q", key, v)
	}
	return n
}
