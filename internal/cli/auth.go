package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignUp prompts for email, name and password and creates a new account.
// On success the user is signed in right away.
func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter your name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.SignUp(ctx, email, name, string(password))
	if err != nil {
		printlnFn("Sign-up failed:", err.Error())
		return err
	}

	printlnFn("Welcome,", user.Name)
	return nil
}

// SignIn prompts for credentials and authenticates against the local
// directory.
func (a *App) SignIn(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getSimpleText(a.reader, "Stay signed in for a week? (y/N)", os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.auth.SignIn(ctx, email, string(password), strings.EqualFold(remember, "y"))
	if err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn("Welcome back,", user.Name)
	return nil
}

// SignOut destroys the current session. Safe to call when not signed in.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		printlnFn("Logout failed:", err.Error())
		return err
	}
	printlnFn("Logged out")
	return nil
}

// RequestReset asks for an email and issues a password reset code. The code
// is printed to the log because there is no mail delivery in a local build.
func (a *App) RequestReset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter account email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.RequestPasswordReset(ctx, email); err != nil {
		printlnFn("Reset request failed:", err.Error())
		return err
	}

	printlnFn("Reset code issued (see log), valid for 5 minutes")
	return nil
}

// ConfirmReset consumes a reset code and sets a new password.
func (a *App) ConfirmReset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter account email", os.Stdout)
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Enter the 6-digit code", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.ResetPassword(ctx, email, code, string(password)); err != nil {
		printlnFn("Reset failed:", err.Error())
		return err
	}

	printlnFn("Password updated, you can log in now")
	return nil
}

// Profile shows the current user and optionally updates name/email.
// Empty answers keep the current values.
func (a *App) Profile(ctx context.Context) error {
	current := a.auth.CurrentUser()
	if current == nil {
		printlnFn("Not logged in")
		return common.ErrNotAuthenticated
	}

	printlnFn(fmt.Sprintf("Signed in as %s <%s>", current.Name, current.Email))

	name, err := getSimpleText(a.reader, "New name (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "New email (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}

	if name == "" && email == "" {
		return nil
	}

	updated, err := a.auth.UpdateProfile(ctx, name, email)
	if err != nil {
		printlnFn("Update failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Profile updated: %s <%s>", updated.Name, updated.Email))
	return nil
}
