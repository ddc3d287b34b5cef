package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/VolkanCARBUGA/VintedClone/internal/app"
	"github.com/VolkanCARBUGA/VintedClone/internal/listing"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
)

// optionalString is a flag that remembers whether it was set, so edit can
// tell "unchanged" from "cleared".
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value, o.set = v, true
	return nil
}

func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	return &o.value
}

func sell(ctx context.Context, opts app.Options, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sell", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var d listing.Draft
	fs.StringVar(&d.Title, "title", "", "listing title")
	fs.StringVar(&d.Description, "description", "", "listing description")
	fs.Float64Var(&d.Price, "price", 0, "asking price")
	fs.StringVar(&d.Category, "category", "", "Women, Men, Kids or Home")
	fs.StringVar(&d.Condition, "condition", "", "item condition")
	fs.StringVar(&d.Brand, "brand", "", "brand")
	fs.StringVar(&d.Size, "size", "", "size")
	images := fs.String("images", "", "comma-separated image URLs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	d.Images = splitList(*images)

	p, err := app.Sell(ctx, opts, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Listed %q for %s (id %s).\n", p.Title, price(p.Price), p.ID)
	return nil
}

func edit(ctx context.Context, opts app.Options, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var title, description, category, condition, brand, size optionalString
	fs.Var(&title, "title", "new title")
	fs.Var(&description, "description", "new description")
	fs.Var(&category, "category", "new category")
	fs.Var(&condition, "condition", "new condition")
	fs.Var(&brand, "brand", "new brand")
	fs.Var(&size, "size", "new size")
	newPrice := fs.Float64("price", 0, "new price")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: vinted edit [flags] <listing-id>")
	}

	patch := listing.Patch{
		Title:       title.ptr(),
		Description: description.ptr(),
		Category:    category.ptr(),
		Condition:   condition.ptr(),
		Brand:       brand.ptr(),
		Size:        size.ptr(),
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "price" {
			patch.Price = newPrice
		}
	})

	p, err := app.EditListing(ctx, opts, fs.Arg(0), patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Updated %q, now %s.\n", p.Title, price(p.Price))
	return nil
}

func delist(ctx context.Context, opts app.Options, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: vinted delist <listing-id>")
	}
	if err := app.Delist(ctx, opts, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Listing removed.")
	return nil
}

func showProfile(ctx context.Context, opts app.Options, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	status := fs.String("status", "active", "listing status: active or sold")
	followers := fs.Bool("followers", false, "list followers")
	following := fs.Bool("following", false, "list followed users")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("usage: vinted profile [flags] [user-id]")
	}

	view, err := app.ShowProfile(ctx, opts, app.ProfileRequest{
		UserID:        fs.Arg(0),
		Status:        *status,
		WithFollowers: *followers,
		WithFollowing: *following,
	})
	if err != nil {
		return err
	}

	u := view.User
	fmt.Fprintf(stdout, "@%s  %d followers, %d following\n", u.Username, u.FollowerCount, u.FollowingCount)
	if u.Bio != "" {
		fmt.Fprintln(stdout, u.Bio)
	}
	if u.Location != "" {
		fmt.Fprintln(stdout, u.Location)
	}
	fmt.Fprintf(stdout, "\n%d %s listings\n", len(view.Listings), *status)
	for _, p := range view.Listings {
		fmt.Fprintf(stdout, "  %s  %-32s %10s\n", p.ID, p.Title, price(p.Price))
	}
	printPeople(stdout, "Followers", *followers, view.Followers)
	printPeople(stdout, "Following", *following, view.Following)
	return nil
}

func printPeople(w io.Writer, title string, requested bool, people []market.UserSummary) {
	if !requested {
		return
	}
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(people))
	for _, p := range people {
		fmt.Fprintf(w, "  @%s\n", p.Username)
	}
}

func setFollow(ctx context.Context, opts app.Options, args []string, follow bool, stdout io.Writer) error {
	verb := "follow"
	if !follow {
		verb = "unfollow"
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: vinted %s <user-id>", verb)
	}
	u, err := app.SetFollow(ctx, opts, args[0], follow)
	if err != nil {
		return err
	}
	if u.IsFollowing {
		fmt.Fprintf(stdout, "Following @%s (%d followers).\n", u.Username, u.FollowerCount)
	} else {
		fmt.Fprintf(stdout, "Not following @%s (%d followers).\n", u.Username, u.FollowerCount)
	}
	return nil
}

func updateProfile(ctx context.Context, opts app.Options, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("update-profile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in market.ProfileInput
	fs.StringVar(&in.Username, "username", "", "new username")
	fs.StringVar(&in.Bio, "bio", "", "profile bio")
	fs.StringVar(&in.Location, "location", "", "location")
	fs.StringVar(&in.Avatar, "avatar", "", "avatar URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := app.UpdateProfile(ctx, opts, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Profile saved for @%s.\n", u.Username)
	return nil
}

func showThread(ctx context.Context, opts app.Options, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("thread", flag.ContinueOnError)
	fs.SetOutput(stderr)
	reply := fs.String("send", "", "send this message before printing the thread")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: vinted thread [-send text] <conversation-id>")
	}

	view, err := app.ShowThread(ctx, opts, fs.Arg(0), *reply)
	if err != nil {
		return err
	}
	c := view.Conversation
	fmt.Fprintf(stdout, "@%s about %q (%s)\n\n", c.User.Username, c.Product.Title, price(c.Product.Price))
	for _, m := range view.Messages {
		who := "you"
		if m.SenderID == c.User.ID {
			who = "@" + c.User.Username
		}
		fmt.Fprintf(stdout, "%s: %s\n", who, m.Content)
	}
	return nil
}

func price(v float64) string {
	return fmt.Sprintf("%.2f TL", v)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
