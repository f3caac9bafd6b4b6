package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
)

func main() {
	var size int
	flag.IntVar(&size, "bytes", 48, "number of random bytes in the key")
	flag.Parse()
	if size < 16 {
		log.Fatal("key must be at least 16 bytes")
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate jwt key: %v", err)
	}
	key := base64.RawURLEncoding.EncodeToString(buf)

	fmt.Println("=================================================")
	fmt.Println("  JWT Signing Key (HS256)")
	fmt.Println("=================================================")
	fmt.Println()
	fmt.Println("Add this to your backend/config/private.yaml:")
	fmt.Printf("jwt_key: \"%s\"\n", key)
	fmt.Println()
	fmt.Println("or export it:")
	fmt.Printf("POSTBOARD_JWT_KEY=%s\n", key)
	fmt.Println()
	fmt.Println("Rotating the key signs out every user.")
	fmt.Println("=================================================")
}
