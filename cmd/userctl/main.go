// Command userctl manages the credential store used by the support
// rewriter backend: an interactive menu for day-to-day user
// administration, plus an "init" flow that bootstraps a fresh secrets
// file with the first user.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"support-backend-go/config"
	"support-backend-go/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// getSimpleText prints a prompt to w and reads a single line of input.
// The trailing newline is trimmed.
func getSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// getPassword reads a password from the terminal without echo.
var getPassword = func(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// showEnvLine prints the current mapping as the dotfile line the
// operator is expected to persist.
func showEnvLine(store *services.UserStore, w io.Writer) {
	if store.Len() == 0 {
		fmt.Fprintln(w, "\nNo users configured")
		return
	}
	fmt.Fprintln(w, "\nCurrent configuration:")
	fmt.Fprintln(w, store.EnvLine())
	fmt.Fprintln(w, "\nCopy this line to your .env file")
}

func listUsers(store *services.UserStore, w io.Writer) {
	names := store.Usernames()
	if len(names) == 0 {
		fmt.Fprintln(w, "No users found")
		return
	}

	fmt.Fprintln(w, "\nCurrent Users:")
	fmt.Fprintln(w, strings.Repeat("-", 20))
	for _, name := range names {
		fmt.Fprintf(w, "Username: %s\n", name)
	}
	fmt.Fprintln(w, strings.Repeat("-", 20))
	showEnvLine(store, w)
}

// runMenu drives the interactive user-management loop until the
// operator exits or input runs out.
func runMenu(store *services.UserStore, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintln(w, "\nUser Management System")
		fmt.Fprintln(w, "1. Add User")
		fmt.Fprintln(w, "2. Remove User")
		fmt.Fprintln(w, "3. List Users")
		fmt.Fprintln(w, "4. Change Password")
		fmt.Fprintln(w, "5. Exit")

		choice, err := getSimpleText(reader, "\nEnter your choice (1-5)", w)
		if err != nil {
			return
		}

		switch choice {
		case "1":
			username, err := getSimpleText(reader, "Enter username", w)
			if err != nil {
				return
			}
			password, err := getPassword(w, "Enter password")
			if err != nil {
				return
			}
			if err := store.Add(username, password); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(w, "User '%s' added successfully!\n", username)
			showEnvLine(store, w)

		case "2":
			username, err := getSimpleText(reader, "Enter username to remove", w)
			if err != nil {
				return
			}
			if err := store.Remove(username); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(w, "User '%s' removed successfully!\n", username)
			showEnvLine(store, w)

		case "3":
			listUsers(store, w)

		case "4":
			username, err := getSimpleText(reader, "Enter username", w)
			if err != nil {
				return
			}
			password, err := getPassword(w, "Enter new password")
			if err != nil {
				return
			}
			if err := store.ChangePassword(username, password); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(w, "Password changed successfully for user: %s\n", username)
			showEnvLine(store, w)

		case "5":
			if store.Len() > 0 {
				fmt.Fprintln(w, "\nFinal configuration:")
				fmt.Fprintln(w, store.EnvLine())
			}
			fmt.Fprintln(w, "\nExiting...")
			return

		default:
			fmt.Fprintln(w, "Invalid choice. Please try again.")
		}
	}
}

// runCheck reports the state of the credential sources without changing
// anything, so an operator can see what the server's loader will find.
func runCheck(w io.Writer, envPath, secretsPath string, log logrus.FieldLogger) {
	fmt.Fprintf(w, "Checking %s file...\n", envPath)
	fmt.Fprintln(w, strings.Repeat("-", 30))

	data, err := os.ReadFile(envPath)
	switch {
	case err != nil:
		fmt.Fprintf(w, "Error: %s file not found\n", envPath)
	case strings.TrimSpace(string(data)) == "":
		fmt.Fprintf(w, "Error: %s file is empty\n", envPath)
	default:
		line := ""
		for _, l := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(strings.TrimSpace(l), services.UsersEnvKey+"=") {
				line = strings.TrimSpace(l)
				break
			}
		}
		if line == "" {
			fmt.Fprintf(w, "Error: %s file has no %s line\n", envPath, services.UsersEnvKey)
			fmt.Fprintln(w, "Expected format:")
			fmt.Fprintf(w, "%s={\"username\":\"hashed_password\"}\n", services.UsersEnvKey)
			break
		}

		store := services.NewUserStore(log)
		store.LoadFromEnvLine(line)
		fmt.Fprintf(w, "%s line found with %d user(s)\n", services.UsersEnvKey, store.Len())
	}

	fmt.Fprintf(w, "\nChecking %s file...\n", secretsPath)
	fmt.Fprintln(w, strings.Repeat("-", 30))

	if _, err := os.Stat(secretsPath); err != nil {
		fmt.Fprintf(w, "Error: %s file not found\n", secretsPath)
		return
	}

	store := services.NewUserStore(log)
	store.LoadFromSecretsFile(secretsPath)
	fmt.Fprintf(w, "Secrets file found with %d user(s)\n", store.Len())
}

// runInit bootstraps a fresh secrets file with a single user.
func runInit(store *services.UserStore, reader *bufio.Reader, w io.Writer, path string) error {
	fmt.Fprintln(w, "Setting up a new secrets file...")

	username, err := getSimpleText(reader, "Enter username", w)
	if err != nil {
		return err
	}
	password, err := getPassword(w, "Enter password")
	if err != nil {
		return err
	}

	if err := store.Add(username, password); err != nil {
		return err
	}
	if err := store.WriteSecretsFile(path); err != nil {
		return err
	}

	fmt.Fprintf(w, "Secrets file written to %s\n", path)
	return nil
}

func main() {
	if err := config.LoadConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	store := services.NewUserStore(logger)
	reader := bufio.NewReader(os.Stdin)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "init":
			if err := runInit(store, reader, os.Stdout, config.SecretsFile); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			return
		case "check":
			runCheck(os.Stdout, ".env", config.SecretsFile, logger)
			return
		}
	}

	// Load the existing mapping so the menu edits the current state
	if config.AppUsers != "" {
		store.LoadFromJSON(config.AppUsers)
	} else {
		store.LoadFromSecretsFile(config.SecretsFile)
	}

	if store.Len() > 0 {
		fmt.Println("\nLoaded existing users:")
		listUsers(store, os.Stdout)
	} else {
		fmt.Println("\nNo existing users found")
	}

	runMenu(store, reader, os.Stdout)
}
