package commands

import (
	"context"
	"fmt"
	"time"
)

// HandleLogin processes the --login command
func HandleLogin(ctx context.Context, app *App, username string) error {
	password, err := app.readPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := app.Session.Login(ctx, username, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Logged in as %s (%s)\n", user.DisplayName(), user.Username)
	return nil
}

// HandleRegister processes the --register command. It does not log in.
func HandleRegister(ctx context.Context, app *App, username, name string) error {
	if name == "" {
		name = username
	}

	password, err := app.readPassword("Choose a password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	user, err := app.Session.Register(ctx, name, username, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Registered %s. Log in with: taskdesk --login %s\n", user.Username, user.Username)
	return nil
}

// HandleLogout processes the --logout command
func HandleLogout(app *App) error {
	if err := app.Session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "Logged out")
	return nil
}

// HandleWhoami processes the --whoami command
func HandleWhoami(ctx context.Context, app *App) error {
	user, err := requireUser(ctx, app)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "%s (%s)\n", user.DisplayName(), user.Username)
	if claims, err := app.Session.Claims(); err == nil && !claims.Expiry().IsZero() {
		fmt.Fprintf(app.Out, "Session expires %s\n", claims.Expiry().Local().Format(time.DateTime))
	}
	return nil
}
