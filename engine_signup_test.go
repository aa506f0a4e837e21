package goAuthKit

import (
	"context"
	"errors"
	"testing"
)

func TestSignupSuccess(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedOTP(t, "new@example.com", "652110")
	ctx := context.Background()

	result, err := env.engine.Signup(ctx, SignupRequest{
		Identifier: "new@example.com",
		Password:   "a-strong-password",
		Code:       "652110",
		FirstName:  "New",
		LastName:   "User",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if result.AccessToken == "" || result.SessionToken == "" {
		t.Fatal("expected tokens after signup")
	}

	user, err := env.users.GetUserByIdentifier(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Username != "new" {
		t.Fatalf("username = %q, want the address local part", user.Username)
	}
	if !user.EmailVerified || !user.IsVerified || !user.IsActive {
		t.Fatalf("flags not set: %+v", user)
	}

	groups, err := env.engine.UserGroups(ctx, user.UserID)
	if err != nil || len(groups) != 1 || groups[0] != "user" {
		t.Fatalf("groups = %v, %v; want [user]", groups, err)
	}

	// The code was consumed once the account committed.
	if env.redis.Exists("otp:new@example.com") {
		t.Fatal("otp code not consumed after signup")
	}

	// The new account can immediately log in with its password.
	if _, err := env.engine.Login(ctx, "new@example.com", "a-strong-password"); err != nil {
		t.Fatalf("post-signup login: %v", err)
	}
}

func TestSignupPhoneIdentifier(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedOTP(t, "+15550002222", "909090")

	if _, err := env.engine.Signup(context.Background(), SignupRequest{
		Identifier: "+15550002222",
		Password:   "a-strong-password",
		Code:       "909090",
	}); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	user, err := env.users.GetUserByIdentifier(context.Background(), "+15550002222")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Username != "+15550002222" || !user.PhoneVerified || user.EmailVerified {
		t.Fatalf("phone signup fields wrong: %+v", user)
	}
}

func TestSignupInvalidOTP(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedOTP(t, "new@example.com", "652110")

	_, err := env.engine.Signup(context.Background(), SignupRequest{
		Identifier: "new@example.com",
		Password:   "a-strong-password",
		Code:       "000000",
	})
	if !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("Signup = %v, want ErrInvalidOTP", err)
	}
	if _, lookupErr := env.users.GetUserByIdentifier(context.Background(), "new@example.com"); lookupErr == nil {
		t.Fatal("user must not be created on invalid OTP")
	}
}

func TestSignupDuplicateKeepsCode(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "taken@example.com", "hunter2-hunter2")
	env.seedOTP(t, "taken@example.com", "445566")

	_, err := env.engine.Signup(context.Background(), SignupRequest{
		Identifier: "taken@example.com",
		Password:   "a-strong-password",
		Code:       "445566",
	})
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("Signup = %v, want ErrAccountExists", err)
	}

	// The pre-check does not consume; the code survives the rejection.
	if !env.redis.Exists("otp:taken@example.com") {
		t.Fatal("otp code consumed by a rejected signup")
	}
}

func TestSignupMasterOTPGrantsSuperAdmin(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.OTP.MasterOTP = "999000"
	})
	ctx := context.Background()

	if _, err := env.engine.Signup(ctx, SignupRequest{
		Identifier: "root@example.com",
		Password:   "a-strong-password",
		Code:       "999000",
	}); err != nil {
		t.Fatalf("Signup with master code: %v", err)
	}

	user, err := env.users.GetUserByIdentifier(ctx, "root@example.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	groups, err := env.engine.UserGroups(ctx, user.UserID)
	if err != nil || len(groups) != 1 || groups[0] != "super_admin" {
		t.Fatalf("groups = %v, %v; want [super_admin]", groups, err)
	}

	// Super admins bypass permission checks entirely.
	principal := &Principal{UserID: user.UserID}
	if err := env.engine.Authorize(ctx, principal, []string{"anything_at_all"}, true); err != nil {
		t.Fatalf("super admin Authorize: %v", err)
	}
}

func TestSignupGroupAssignmentFailure(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Account.DefaultGroup = "does_not_exist"
	})
	env.seedOTP(t, "new@example.com", "652110")

	_, err := env.engine.Signup(context.Background(), SignupRequest{
		Identifier: "new@example.com",
		Password:   "a-strong-password",
		Code:       "652110",
	})
	if !errors.Is(err, ErrGroupAssignmentFailed) {
		t.Fatalf("Signup = %v, want ErrGroupAssignmentFailed", err)
	}

	// The code survives so the signup can be retried once the group exists.
	if !env.redis.Exists("otp:new@example.com") {
		t.Fatal("otp code consumed by a failed signup")
	}
}

func TestSignupCreateFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedOTP(t, "new@example.com", "652110")
	env.users.createErr = errors.New("db write failed")

	_, err := env.engine.Signup(context.Background(), SignupRequest{
		Identifier: "new@example.com",
		Password:   "a-strong-password",
		Code:       "652110",
	})
	if err == nil {
		t.Fatal("expected create failure to surface")
	}
	// A failed create leaves the code for a retry.
	if !env.redis.Exists("otp:new@example.com") {
		t.Fatal("otp code consumed by a failed create")
	}
}

func TestIdentifierAvailable(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedUser(t, "taken@example.com", "hunter2-hunter2")
	ctx := context.Background()

	if ok, err := env.engine.IdentifierAvailable(ctx, "taken@example.com"); err != nil || ok {
		t.Fatalf("taken identifier: ok=%v err=%v", ok, err)
	}
	if ok, err := env.engine.IdentifierAvailable(ctx, "free@example.com"); err != nil || !ok {
		t.Fatalf("free identifier: ok=%v err=%v", ok, err)
	}
}
