package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"midatopay.backend/internal/domain/entities"
	"midatopay.backend/internal/usecases"
)

var (
	printfFn      = fmt.Printf
	fatalfFn      = log.Fatalf
	writeFileFn   = os.WriteFile
	generateStore = usecases.NewWalletStore(nil)
)

// resolveArgs reads "<email> <password> [out-file]"
func resolveArgs(args []string) (email, password, out string, err error) {
	if len(args) < 2 {
		return "", "", "", errors.New("usage: wallet-gen <email> <password> [out-file]")
	}
	email, password = args[0], args[1]
	if len(args) > 2 {
		out = args[2]
	}
	return email, password, out, nil
}

// generateBackup creates a merchant wallet and returns it in the import format
func generateBackup(email, password string) (*entities.MerchantWallet, []byte, error) {
	wallet, err := generateStore.GenerateWallet(context.Background(), email, password)
	if err != nil {
		return nil, nil, err
	}
	raw, err := json.MarshalIndent(entities.WalletExport{
		Version:             entities.WalletExportVersion,
		UserID:              wallet.UserID,
		Email:               wallet.Email,
		PasswordCheck:       wallet.PasswordCheck,
		EncryptedPrivateKey: wallet.EncryptedPrivateKey,
		PublicKey:           wallet.PublicKey,
		Address:             wallet.Address,
		CreatedAt:           wallet.CreatedAt,
	}, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return wallet, raw, nil
}

func main() {
	email, password, out, err := resolveArgs(os.Args[1:])
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	wallet, backup, err := generateBackup(email, password)
	if err != nil {
		fatalfFn("Failed to generate wallet: %v", err)
		return
	}

	printfFn("Merchant address: %s\n", wallet.Address)
	if out == "" {
		printfFn("%s\n", backup)
		return
	}
	if err := writeFileFn(out, backup, 0o600); err != nil {
		fatalfFn("Failed to write backup: %v", err)
		return
	}
	printfFn("Backup written to %s\n", out)
}
