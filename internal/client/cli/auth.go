package cli

import "context"

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for name, email and password, creates the account and
// starts a session.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	user, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	a.user = user
	a.println("Welcome,", user.Name+"!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	user, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.user = user
	a.println("Logged in as", user.Name)
	return nil
}

// Logout clears the server cookie and the local session. The local state is
// dropped even when the server call fails.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.user = nil
	a.println("Logged out")
	return err
}

func (a *App) Me(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.user = user
	a.println(user.Name, "<"+user.Email+">", user.ID)
	return nil
}
