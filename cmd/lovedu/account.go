package main

import (
	"context"
	"flag"
	"time"

	"lovedu_client/internal/auth"
	"lovedu_client/internal/i18n"
	"lovedu_client/internal/models"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *email == "" {
		if *email, err = a.prompt(a.t("common.email")); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.prompt(a.t("common.password")); err != nil {
			return err
		}
	}

	user, err := a.auth.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	a.printf("Signed in as %s\n", user.Email)

	if auth.PostLoginRoute(user) == auth.RouteAdmin {
		return showAdminSummary(ctx, a)
	}
	a.println("Run `lovedu chat` to start chatting.")
	return nil
}

func runSignup(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	var in auth.SignupInput
	fs.StringVar(&in.Email, "email", "", "Account email")
	fs.StringVar(&in.FullName, "name", "", "Full name")
	fs.StringVar(&in.DateOfBirth, "dob", "", "Date of birth (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fields := []struct {
		label string
		dst   *string
	}{
		{a.t("common.email"), &in.Email},
		{"Full name", &in.FullName},
		{"Date of birth (YYYY-MM-DD)", &in.DateOfBirth},
		{a.t("common.password"), &in.Password},
		{a.t("common.confirmPassword"), &in.ConfirmPassword},
	}
	for _, f := range fields {
		if *f.dst != "" {
			continue
		}
		v, err := a.prompt(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	session, err := a.auth.SignUp(ctx, in)
	if err != nil {
		return err
	}
	if session.AccessToken == "" {
		a.println(a.t("auth.accountCreated"))
		return nil
	}
	a.printf("Account created. Signed in as %s\n", in.Email)
	return nil
}

func runLogout(_ context.Context, a *app, _ []string) error {
	a.auth.SignOut()
	a.println("Signed out.")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "Also show backend and identity settings")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	user := a.auth.RefreshCurrentUser(ctx)
	if user == nil {
		user = a.auth.User()
	}
	printUser(a, user)
	if exp, ok := a.auth.TokenExpiry(); ok {
		a.printf("Token expires: %s\n", exp.Local().Format(time.RFC1123))
	}
	if *verbose {
		a.printf("Backend:       %s\n", a.client.BaseURL())
		a.printf("Identity URL:  %s\n", a.cfg.Identity.URL)
		a.printf("Language:      %s (%s)\n", a.lang.Current().NativeName(), a.lang.Current().Dir())
	}
	return nil
}

func printUser(a *app, user *models.User) {
	a.printf("Email:         %s\n", user.Email)
	if name := user.FullName(); name != "" {
		a.printf("Name:          %s\n", name)
	}
	if dob := user.DateOfBirth(); dob != "" {
		a.printf("Date of birth: %s\n", dob)
	}
	if user.IsAdmin() {
		a.println("Role:          admin")
	}
}

func runProfile(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	var update models.ProfileUpdate
	fs.StringVar(&update.FullName, "name", "", "New full name")
	fs.StringVar(&update.DateOfBirth, "dob", "", "New date of birth (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	user, err := a.auth.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	a.println("Profile updated.")
	printUser(a, user)
	return nil
}

func runPassword(ctx context.Context, a *app, _ []string) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	current, err := a.prompt("Current password")
	if err != nil {
		return err
	}
	next, err := a.prompt("New password")
	if err != nil {
		return err
	}
	confirm, err := a.prompt(a.t("common.confirmPassword"))
	if err != nil {
		return err
	}
	if err := a.auth.ChangePassword(ctx, current, next, confirm); err != nil {
		return err
	}
	a.println("Password changed.")
	return nil
}

func runLang(_ context.Context, a *app, args []string) error {
	if len(args) == 0 {
		a.printf("%s (%s)\n", a.lang.Current(), a.lang.Current().NativeName())
		return nil
	}
	lang, err := i18n.ParseLang(args[0])
	if err != nil {
		return err
	}
	if err := a.lang.Set(lang); err != nil {
		return err
	}
	a.printf("Language set to %s\n", lang.NativeName())
	return nil
}
