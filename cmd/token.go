package cmd

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/backstage/services/events/config"
	"example.com/backstage/services/events/internal/models"
	"example.com/backstage/services/events/internal/repository"
)

var (
	tokenName       string
	tokenExpiryDays int
)

// tokenCmd groups API token management commands
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
	Long:  `Generate, list, and revoke the bearer tokens accepted by the API.`,
}

var generateTokenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return generateToken()
	},
}

var listTokensCmd = &cobra.Command{
	Use:   "list",
	Short: "List all API tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTokens()
	},
}

var revokeTokenCmd = &cobra.Command{
	Use:   "revoke [id]",
	Short: "Revoke an API token by its ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid ID format: %w", err)
		}
		return revokeToken(uint(id))
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(generateTokenCmd)
	tokenCmd.AddCommand(listTokensCmd)
	tokenCmd.AddCommand(revokeTokenCmd)

	generateTokenCmd.Flags().StringVarP(&tokenName, "name", "n", "", "Name for the token (required)")
	generateTokenCmd.Flags().IntVarP(&tokenExpiryDays, "expiration", "e", 365, "Expiration in days (0 for never)")
	generateTokenCmd.MarkFlagRequired("name")
}

// generateSecureToken generates a secure random token value
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func tokenRepo() (repository.TokenRepository, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if err := models.SetupModels(db); err != nil {
		return nil, err
	}

	return repository.NewTokenRepository(db), nil
}

func generateToken() error {
	repo, err := tokenRepo()
	if err != nil {
		return err
	}

	value, err := generateSecureToken(32)
	if err != nil {
		return err
	}

	token := &models.APIToken{
		Token: value,
		Name:  tokenName,
	}
	if tokenExpiryDays > 0 {
		expiry := time.Now().AddDate(0, 0, tokenExpiryDays)
		token.ExpiresAt = &expiry
	}

	if err := repo.Create(context.Background(), token); err != nil {
		return err
	}

	fmt.Println("=================================================================")
	fmt.Println("API token generated successfully!")
	fmt.Println("=================================================================")
	fmt.Printf("ID: %d\n", token.ID)
	fmt.Printf("Name: %s\n", token.Name)
	if token.ExpiresAt != nil {
		fmt.Printf("Expires: %s\n", token.ExpiresAt.Format(time.RFC3339))
	} else {
		fmt.Println("Expires: Never")
	}
	fmt.Println("-----------------------------------------------------------------")
	fmt.Printf("Token: %s\n", token.Token)
	fmt.Println("-----------------------------------------------------------------")
	fmt.Println("IMPORTANT: Store this token securely. It won't be displayed again.")
	fmt.Println("=================================================================")
	return nil
}

func listTokens() error {
	repo, err := tokenRepo()
	if err != nil {
		return err
	}

	tokens, err := repo.List(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Total API tokens: %d\n", len(tokens))
	for _, token := range tokens {
		fmt.Println("-----------------------------------------------------------------")
		fmt.Printf("ID: %d\n", token.ID)
		fmt.Printf("Name: %s\n", token.Name)
		if token.ExpiresAt != nil {
			fmt.Printf("Expires: %s\n", token.ExpiresAt.Format(time.RFC3339))
		} else {
			fmt.Println("Expires: Never")
		}
		if token.LastUsedAt != nil {
			fmt.Printf("Last used: %s\n", token.LastUsedAt.Format(time.RFC3339))
		}
	}
	return nil
}

func revokeToken(id uint) error {
	repo, err := tokenRepo()
	if err != nil {
		return err
	}

	if err := repo.Delete(context.Background(), id); err != nil {
		return err
	}

	log.Info().Uint("id", id).Msg("API token revoked")
	return nil
}
