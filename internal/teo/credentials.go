package teo

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
)

// Credentials ключи доступа к API. Никогда не логируются.
type Credentials struct {
	SecretID  string
	SecretKey string
}

// Valid true, если заданы оба ключа
func (c Credentials) Valid() bool {
	return c.SecretID != "" && c.SecretKey != ""
}

// String скрывает ключи при выводе
func (c Credentials) String() string {
	if !c.Valid() {
		return "Credentials{missing}"
	}
	return "Credentials{***}"
}

// LoadCredentials берет ключи из окружения, недостающие дочитывает из keyFile.
// Строки файла имеют вид "SecretId：xxx" и "SecretKey：xxx" (полноширинное двоеточие).
func LoadCredentials(secretID, secretKey, keyFile string) Credentials {
	creds := Credentials{SecretID: secretID, SecretKey: secretKey}
	if creds.Valid() || keyFile == "" {
		return creds
	}

	fromFile, err := readKeyFile(keyFile)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error reading %s: %v", keyFile, err)
		}
		return creds
	}
	if creds.SecretID == "" {
		creds.SecretID = fromFile.SecretID
	}
	if creds.SecretKey == "" {
		creds.SecretKey = fromFile.SecretKey
	}
	return creds
}

func readKeyFile(path string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return Credentials{}, err
	}
	defer f.Close()

	var creds Credentials
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "SecretId") && creds.SecretID == "":
			creds.SecretID = valueAfterColon(line)
		case strings.Contains(line, "SecretKey") && creds.SecretKey == "":
			creds.SecretKey = valueAfterColon(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, fmt.Errorf("failed to scan key file: %w", err)
	}
	return creds, nil
}

func valueAfterColon(line string) string {
	_, value, found := strings.Cut(line, "：")
	if !found {
		return ""
	}
	return strings.TrimSpace(value)
}
