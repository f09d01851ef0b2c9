package main

import (
	"errors"
	"fmt"
	"os"

	"canvas-ai/internal/infra/config"
)

type encryptSecretCmd struct {
	Value string `arg:"" help:"Plaintext secret, e.g. an API key."`
}

func (c *encryptSecretCmd) Run() error {
	passphrase := os.Getenv("CANVASAI_CONFIG_KEY")
	if passphrase == "" {
		return errors.New("CANVASAI_CONFIG_KEY must be set to the passphrase used when loading the config")
	}
	sealed, err := config.EncryptValue(c.Value, passphrase)
	if err != nil {
		return err
	}
	fmt.Println("enc:" + sealed)
	return nil
}
