package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

// 開発用のBearerトークンを発行する。
// JWT_SECRETがあればHS256、なければES256の鍵ペアを作って公開鍵も出力する。
func main() {
	sub := flag.String("sub", "", "user id (sub claim); random when empty")
	role := flag.String("role", "", "role claim, e.g. admin")
	aud := flag.String("aud", "authenticated", "aud claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	keyOut := flag.String("key-out", "", "write the generated ES256 private key PEM to this file")
	flag.Parse()

	_ = godotenv.Load()

	if *sub == "" {
		*sub = randomSub()
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": *sub,
		"aud": *aud,
		"iat": now.Unix(),
		"exp": now.Add(*ttl).Unix(),
	}
	if *role != "" {
		claims["role"] = *role
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		exitOn(err)
		fmt.Println(tok)
		return
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	exitOn(err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(priv)
	exitOn(err)

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	exitOn(err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	if *keyOut != "" {
		privDER, err := x509.MarshalECPrivateKey(priv)
		exitOn(err)
		privPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privDER})
		exitOn(os.WriteFile(*keyOut, privPEM, 0o600))
	}

	//.envにそのまま貼れる1行形式
	fmt.Printf("JWT_PUBLIC_KEY=\"%s\"\n", strings.ReplaceAll(strings.TrimSpace(string(pubPEM)), "\n", `\n`))
	fmt.Println(tok)
}

func randomSub() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("dev-%x", b)
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
