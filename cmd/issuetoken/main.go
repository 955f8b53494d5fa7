package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"liyu1981.xyz/iot-access-telemetry/pkg/auth"
	"liyu1981.xyz/iot-access-telemetry/pkg/common"
)

// issuetoken prints an admin bearer token signed with IOT_JWT_SECRET.
func main() {
	subject := flag.String("sub", "admin", "subject recorded in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	// a missing .env is fine when the secret comes from the environment
	_ = godotenv.Load()

	token, err := auth.IssueAdminToken(os.Getenv(common.EnvKeyIOTJWTSecret), *subject, *ttl)
	if err != nil {
		log.Fatalf("cannot issue token: %v (set %s)", err, common.EnvKeyIOTJWTSecret)
	}
	fmt.Println(token)
}
