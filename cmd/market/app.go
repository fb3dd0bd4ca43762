package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/campusmarket/market-client/internal/api"
	"github.com/campusmarket/market-client/internal/auth"
	"github.com/campusmarket/market-client/internal/chat"
	"github.com/campusmarket/market-client/internal/gate"
	"github.com/campusmarket/market-client/internal/inbox"
	"github.com/campusmarket/market-client/internal/listing"
	"github.com/campusmarket/market-client/internal/room"
)

// app is the interactive shell around the marketplace client. One instance
// serves one terminal session.
type app struct {
	logger  *slog.Logger
	client  *api.Client
	store   auth.Store
	session *chat.Session
	display *termDisplay

	in  *bufio.Scanner
	out io.Writer

	viewer   gate.Viewer
	identity string // login email; frames from this sender render as "you"
	nickname string

	pager  listing.Pager
	filter api.ListOptions
}

// run restores any stored login and processes commands until quit or EOF.
func (a *app) run(ctx context.Context) error {
	a.pager = listing.NewPager()
	a.restoreLogin(ctx)

	fmt.Fprintln(a.out, "campus market — type 'help' for commands")
	for {
		fmt.Fprint(a.out, "> ")
		if !a.in.Scan() {
			return a.in.Err()
		}
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "quit", "exit":
			a.session.Close()
			return nil
		case "help":
			a.printHelp()
		case "register":
			a.register(ctx, rest)
		case "login":
			a.login(ctx, rest)
		case "logout":
			a.logout(ctx)
		case "whoami":
			a.whoami(ctx)
		case "nick":
			a.updateNickname(ctx, rest)
		case "ls":
			a.resetListing(api.ListOptions{})
			a.listItems(ctx)
		case "search":
			a.resetListing(api.ListOptions{Search: rest})
			a.listItems(ctx)
		case "category":
			a.resetListing(api.ListOptions{Category: rest})
			a.listItems(ctx)
		case "mine":
			if !a.requireLogin() {
				continue
			}
			a.resetListing(api.ListOptions{OwnerID: a.viewer.UserID})
			a.listItems(ctx)
		case "next":
			a.pager = a.pager.Next()
			a.listItems(ctx)
		case "prev":
			a.pager = a.pager.Prev()
			a.listItems(ctx)
		case "show":
			a.showItem(ctx, rest)
		case "new":
			a.createItem(ctx, rest)
		case "edit":
			a.editItem(ctx, rest)
		case "status":
			a.toggleStatus(ctx, rest)
		case "rm":
			a.deleteItem(ctx, rest)
		case "chats":
			a.listChats(ctx)
		case "chat":
			a.chatForItem(ctx, rest)
		case "open":
			a.openRoom(ctx, rest)
		default:
			fmt.Fprintf(a.out, "unknown command %q, type 'help'\n", cmd)
		}
	}
}

func (a *app) printHelp() {
	fmt.Fprint(a.out, `commands:
  register <email> <password> <nickname>
  login <email> <password>        logout
  whoami                          nick <nickname>
  ls | search <q> | category <c> | mine
  next | prev                     show <item-id>
  new <title> <price> <category> <image-path> [description]
  edit <item-id> <title> <price> <category> [description]
  status <item-id>                rm <item-id>
  chats                           chat <item-id>
  open <room-id>                  quit
`)
}

// restoreLogin loads stored credentials at startup. An expired token is
// cleared so the first authorized call does not fail confusingly.
func (a *app) restoreLogin(ctx context.Context) {
	creds, err := a.store.Load(ctx)
	if errors.Is(err, auth.ErrNoCredentials) {
		return
	}
	if err != nil {
		a.logger.Warn("credential restore failed", "err", err)
		return
	}
	if auth.TokenExpired(creds.Token, time.Now()) {
		fmt.Fprintln(a.out, "stored login expired, please log in again")
		if err := a.store.Clear(ctx); err != nil {
			a.logger.Warn("credential clear failed", "err", err)
		}
		return
	}
	a.viewer = gate.Viewer{UserID: creds.UserID, IsAdmin: creds.IsAdmin}
	a.identity = creds.Email
	fmt.Fprintf(a.out, "logged in as %s\n", creds.Email)
}

func (a *app) register(ctx context.Context, args string) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		fmt.Fprintln(a.out, "usage: register <email> <password> <nickname>")
		return
	}
	err := a.client.Register(ctx, fields[0], fields[1], strings.Join(fields[2:], " "))
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintln(a.out, "registered, you can log in now")
}

func (a *app) login(ctx context.Context, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		fmt.Fprintln(a.out, "usage: login <email> <password>")
		return
	}
	result, err := a.client.Login(ctx, fields[0], fields[1])
	if err != nil {
		a.reportError(err)
		return
	}

	creds := auth.Credentials{
		Token:   result.AccessToken,
		Email:   result.UserEmail,
		UserID:  result.UserID,
		IsAdmin: result.IsAdmin,
	}
	if err := a.store.Save(ctx, creds); err != nil {
		a.reportError(err)
		return
	}
	a.viewer = gate.Viewer{UserID: creds.UserID, IsAdmin: creds.IsAdmin}
	a.identity = creds.Email
	fmt.Fprintf(a.out, "logged in as %s\n", creds.Email)
}

// logout clears every stored credential field and drops the live chat
// connection.
func (a *app) logout(ctx context.Context) {
	a.session.Close()
	if err := a.store.Clear(ctx); err != nil {
		a.reportError(err)
		return
	}
	a.viewer = gate.Viewer{}
	a.identity = ""
	a.nickname = ""
	fmt.Fprintln(a.out, "logged out")
}

func (a *app) whoami(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	user, err := a.client.Me(ctx)
	if err != nil {
		a.reportError(err)
		return
	}
	a.nickname = user.Nickname
	fmt.Fprintf(a.out, "%s (%s), user id %d", user.Nickname, user.Email, user.ID)
	if user.IsAdmin {
		fmt.Fprint(a.out, ", admin")
	}
	fmt.Fprintln(a.out)

	creds, err := a.store.Load(ctx)
	if err == nil {
		if expiry, err := auth.TokenExpiry(creds.Token); err == nil {
			fmt.Fprintf(a.out, "token valid until %s\n", expiry.Local().Format(time.RFC1123))
		}
	}
}

func (a *app) updateNickname(ctx context.Context, nickname string) {
	if nickname == "" {
		fmt.Fprintln(a.out, "usage: nick <nickname>")
		return
	}
	if !a.requireLogin() {
		return
	}
	user, err := a.client.UpdateProfile(ctx, nickname)
	if err != nil {
		a.reportError(err)
		return
	}
	a.nickname = user.Nickname
	fmt.Fprintf(a.out, "nickname is now %s\n", user.Nickname)
}

// resetListing starts a fresh page-1 listing with the given filters.
func (a *app) resetListing(filter api.ListOptions) {
	a.pager = listing.NewPager()
	a.filter = filter
}

func (a *app) listItems(ctx context.Context) {
	opts := a.filter
	opts.Skip = a.pager.Skip()
	opts.Limit = a.pager.PerPage
	items, err := a.client.ListItems(ctx, opts)
	if err != nil {
		a.reportError(err)
		return
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "no items on this page")
	}
	for _, item := range items {
		status := ""
		if item.Sold() {
			status = "  [sold]"
		}
		fmt.Fprintf(a.out, "#%-5d %-30s $%.2f  %s%s\n",
			item.ID, item.Title, item.Price, item.Category, status)
	}

	nav := fmt.Sprintf("page %d", a.pager.Page)
	if a.pager.HasPrev() {
		nav += "  (prev)"
	}
	if a.pager.HasNext(len(items)) {
		nav += "  (next)"
	}
	fmt.Fprintln(a.out, nav)
}

func (a *app) showItem(ctx context.Context, arg string) {
	id, ok := a.parseID(arg, "show <item-id>")
	if !ok {
		return
	}
	item, err := a.client.GetItem(ctx, id)
	if err != nil {
		a.reportError(err)
		return
	}

	fmt.Fprintf(a.out, "#%d %s — $%.2f (%s)\n", item.ID, item.Title, item.Price, item.Category)
	if item.Description != "" {
		fmt.Fprintln(a.out, item.Description)
	}
	fmt.Fprintf(a.out, "seller: %s, status: %s\n", item.OwnerNickname, item.Status)

	if a.viewer.CanManage(item.OwnerID) {
		fmt.Fprintf(a.out, "actions: edit %d | status %d (-> %s) | rm %d\n",
			item.ID, item.ID, item.ToggledStatus(), item.ID)
	} else if a.viewer.ShowContact(item.OwnerID, item.Sold()) {
		fmt.Fprintf(a.out, "actions: chat %d\n", item.ID)
	}
}

func (a *app) createItem(ctx context.Context, args string) {
	fields := strings.Fields(args)
	if len(fields) < 4 {
		fmt.Fprintln(a.out, "usage: new <title> <price> <category> <image-path> [description]")
		return
	}
	if !a.requireLogin() {
		return
	}
	price, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		fmt.Fprintf(a.out, "bad price %q\n", fields[1])
		return
	}

	image, err := os.Open(fields[3])
	if err != nil {
		fmt.Fprintf(a.out, "cannot open image: %v\n", err)
		return
	}
	defer image.Close()

	item, err := a.client.CreateItem(ctx, api.NewItem{
		Title:       fields[0],
		Price:       price,
		Category:    fields[2],
		Description: strings.Join(fields[4:], " "),
		ImageName:   fields[3],
		Image:       image,
	})
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintf(a.out, "created item #%d\n", item.ID)
}

func (a *app) editItem(ctx context.Context, args string) {
	fields := strings.Fields(args)
	if len(fields) < 4 {
		fmt.Fprintln(a.out, "usage: edit <item-id> <title> <price> <category> [description]")
		return
	}
	id, ok := a.parseID(fields[0], "edit <item-id> ...")
	if !ok {
		return
	}
	price, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		fmt.Fprintf(a.out, "bad price %q\n", fields[2])
		return
	}

	item, err := a.client.UpdateItem(ctx, id, api.ItemUpdate{
		Title:       fields[1],
		Price:       price,
		Category:    fields[3],
		Description: strings.Join(fields[4:], " "),
	})
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintf(a.out, "updated item #%d\n", item.ID)
}

func (a *app) toggleStatus(ctx context.Context, arg string) {
	id, ok := a.parseID(arg, "status <item-id>")
	if !ok {
		return
	}
	item, err := a.client.GetItem(ctx, id)
	if err != nil {
		a.reportError(err)
		return
	}
	next := item.ToggledStatus()
	if err := a.client.UpdateItemStatus(ctx, id, next); err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintf(a.out, "item #%d is now %s\n", id, next)
}

func (a *app) deleteItem(ctx context.Context, arg string) {
	id, ok := a.parseID(arg, "rm <item-id>")
	if !ok {
		return
	}
	if err := a.client.DeleteItem(ctx, id); err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintf(a.out, "deleted item #%d\n", id)
}

func (a *app) listChats(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	convs, err := a.client.Conversations(ctx)
	if err != nil {
		a.reportError(err)
		return
	}
	if len(convs) == 0 {
		fmt.Fprintln(a.out, "no conversations yet")
		return
	}

	for _, c := range convs {
		unread := ""
		if c.UnreadCount > 0 {
			unread = fmt.Sprintf("  (%d unread)", c.UnreadCount)
		}
		fmt.Fprintf(a.out, "%-12s %-30s %s [%s]%s\n",
			c.RoomID, c.ItemTitle, c.Counterpart, c.Role, unread)
	}
	if badge := inbox.BadgeLabel(inbox.TotalUnread(convs)); badge != "" {
		fmt.Fprintf(a.out, "unread badge: %s\n", badge)
	}
	fmt.Fprintln(a.out, "open a conversation with: open <room-id>")
}

// chatForItem starts a conversation about an item from its listing. The
// viewer is the buyer; sellers reach their conversations through the inbox.
func (a *app) chatForItem(ctx context.Context, arg string) {
	id, ok := a.parseID(arg, "chat <item-id>")
	if !ok {
		return
	}
	if !a.requireLogin() {
		return
	}
	item, err := a.client.GetItem(ctx, id)
	if err != nil {
		a.reportError(err)
		return
	}
	roomID, err := room.ForViewer(item.ID, a.viewer.UserID, item.OwnerID)
	if err != nil {
		fmt.Fprintln(a.out, "this is your own listing; replies arrive in 'chats'")
		return
	}
	a.enterChat(ctx, roomID)
}

// openRoom joins a conversation by its inbox room id.
func (a *app) openRoom(ctx context.Context, arg string) {
	if !a.requireLogin() {
		return
	}
	roomID, err := room.Parse(arg)
	if err != nil {
		fmt.Fprintf(a.out, "bad room id %q\n", arg)
		return
	}
	a.enterChat(ctx, roomID)
}

// enterChat switches the session to the room and loops on chat input until
// /back. Leaving chat mode keeps the connection open, so returning to the
// same room is instant; switching rooms or logging out tears it down.
func (a *app) enterChat(ctx context.Context, roomID room.ID) {
	a.session.OpenRoom(ctx, roomID, a.identity)
	fmt.Fprintf(a.out, "room %s — type messages, /log to re-render, /back to leave\n", roomID)

	defer a.refreshBadge(ctx)
	for a.in.Scan() {
		line := a.in.Text()
		switch strings.TrimSpace(line) {
		case "/back":
			return
		case "/log":
			a.display.Replay()
		default:
			a.session.Send(line)
		}
	}
}

// refreshBadge re-reads the inbox after a room was opened; opening marks it
// read server-side, so the aggregate badge shrinks.
func (a *app) refreshBadge(ctx context.Context) {
	convs, err := a.client.Conversations(ctx)
	if err != nil {
		a.logger.Debug("badge refresh failed", "err", err)
		return
	}
	if badge := inbox.BadgeLabel(inbox.TotalUnread(convs)); badge != "" {
		fmt.Fprintf(a.out, "unread: %s\n", badge)
	}
}

// requireLogin gates commands that need a logged-in user.
func (a *app) requireLogin() bool {
	if a.viewer.UserID == 0 {
		fmt.Fprintln(a.out, "please log in first")
		return false
	}
	return true
}

func (a *app) parseID(arg, usage string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(a.out, "usage: %s\n", usage)
		return 0, false
	}
	return id, true
}

// reportError prints a failure in user terms. Validation problems list the
// offending fields; auth failures suggest logging in.
func (a *app) reportError(err error) {
	var verr *api.ValidationError
	if errors.As(err, &verr) {
		for _, line := range verr.Lines() {
			fmt.Fprintf(a.out, "invalid: %s\n", line)
		}
		return
	}
	if errors.Is(err, api.ErrUnauthorized) {
		fmt.Fprintln(a.out, "not authorized, try logging in again")
		return
	}
	if errors.Is(err, api.ErrNotFound) {
		fmt.Fprintln(a.out, "not found")
		return
	}
	fmt.Fprintf(a.out, "request failed: %v\n", err)
}
