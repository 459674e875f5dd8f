// Package main implements announcement management CLI commands for kitman.
// This file handles creating, listing, editing, and retiring announcements.
package main

import (
	"fmt"
	"strings"
	"time"

	"kitman/internal/markup"
	"kitman/internal/preview"
	"kitman/internal/store"
	"kitman/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// ANNOUNCEMENT COMMANDS
// =============================================================================

var (
	addCategory string
	addServers  []string
	addDisabled bool

	listCategory string
	listServer   string
	listEnabled  bool

	setCategory string

	auditLimit int
)

// announceCmd manages announcements
var announceCmd = &cobra.Command{
	Use:   "announce",
	Short: "Manage announcements",
	Long: `Create, inspect, and retire the announcements served to game servers.

Subcommands:
  add     - Create a new announcement
  list    - List announcements with clamped previews
  show    - Show one announcement in full, with its audit trail
  set     - Edit an announcement's body or category
  assign  - Limit an announcement to specific servers
  rm      - Delete an announcement (its audit trail is kept)
  enable  - Resume serving an announcement
  disable - Stop serving an announcement without deleting it
  audit   - Show recent changes across all announcements`,
	RunE: runAnnounceList,
}

var announceAddCmd = &cobra.Command{
	Use:   "add [body]",
	Short: "Create a new announcement",
	Long: `Creates an announcement from raw markup text. The body is stored
exactly as typed. Quote it so the shell keeps the markup tags intact:

  kitman announce add "<color=red>Restart in <b>5</b> minutes!</color>"
  kitman announce add --category event --server jb1 "Double XP weekend\nStarts Friday"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnnounceAdd,
}

var announceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List announcements with clamped previews",
	RunE:  runAnnounceList,
}

var announceShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one announcement in full, with its audit trail",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnounceShow,
}

var announceSetCmd = &cobra.Command{
	Use:   "set <id> [body]",
	Short: "Edit an announcement's body or category",
	Long: `Replaces the body when new text is given; --category changes the
grouping. Anything not mentioned is left as it is.

  kitman announce set 4f21 "<b>Maintenance over.</b> Welcome back!"
  kitman announce set 4f21 --category general`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnnounceSet,
}

var announceAssignCmd = &cobra.Command{
	Use:   "assign <id> [server...]",
	Short: "Limit an announcement to specific servers",
	Long: `Limits an announcement to the named servers. With no server
arguments the assignment is cleared and the announcement plays everywhere.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnnounceAssign,
}

var announceRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an announcement",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnounceRm,
}

var announceEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Resume serving an announcement",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnounceEnable,
}

var announceDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Stop serving an announcement without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnounceDisable,
}

var announceAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent changes across all announcements",
	RunE:  runAnnounceAudit,
}

func runAnnounceAdd(cmd *cobra.Command, args []string) error {
	body := strings.Join(args, " ")
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("announcement body must not be empty")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a := types.NewAnnouncement(body, addCategory, addServers)
	if addDisabled {
		a.Enabled = false
	}
	warnUnknownServers(addServers)

	if err := st.Create(a); err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	audit(st, a.ID, types.AuditCreate, "created in "+a.Category)

	logger.Info("Announcement created",
		zap.String("id", a.ID),
		zap.String("category", a.Category))

	fmt.Printf("Created %s (%s)\n", a.ShortID(), a.Category)
	fmt.Println(preview.Live(parseMarkup(a.Body)))
	return nil
}

func runAnnounceList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	anns, err := st.List(store.Filter{
		Category:    listCategory,
		Server:      listServer,
		EnabledOnly: listEnabled,
	})
	if err != nil {
		return fmt.Errorf("failed to list announcements: %w", err)
	}

	if len(anns) == 0 {
		fmt.Println("No announcements found.")
		return nil
	}

	fmt.Printf("%-10s %-10s %-3s %-16s %s\n", "ID", "CATEGORY", "ON", "SERVERS", "PREVIEW")
	fmt.Println(strings.Repeat("─", 80))
	for _, a := range anns {
		on := "✓"
		if !a.Enabled {
			on = "✗"
		}
		servers := "all"
		if len(a.Servers) > 0 {
			servers = strings.Join(a.Servers, ",")
		}
		snip := preview.Snippet(parseMarkup(a.Body), cfg.GetListLines(), cfg.GetListWidth())
		fmt.Printf("%-10s %-10s %-3s %-16s %s\n", a.ShortID(), a.Category, on, servers, snip)
	}
	fmt.Println(strings.Repeat("─", 80))
	fmt.Printf("Total: %d announcements\n", len(anns))
	return nil
}

func runAnnounceShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := resolveAnnouncement(st, args[0])
	if err != nil {
		return err
	}

	servers := "all servers"
	if len(a.Servers) > 0 {
		servers = strings.Join(a.Servers, ", ")
	}
	state := "enabled"
	if !a.Enabled {
		state = "disabled"
	}

	fmt.Printf("ID:       %s\n", a.ID)
	fmt.Printf("Category: %s\n", a.Category)
	fmt.Printf("State:    %s\n", state)
	fmt.Printf("Servers:  %s\n", servers)
	fmt.Printf("Created:  %s\n", a.CreatedAt.Local().Format(time.RFC822))
	fmt.Printf("Updated:  %s\n", a.UpdatedAt.Local().Format(time.RFC822))
	fmt.Println()
	fmt.Println("Raw markup:")
	fmt.Println(indent(a.Body, "  "))
	fmt.Println()
	fmt.Println("Preview:")
	fmt.Println(indent(preview.Live(parseMarkup(a.Body)), "  "))

	trail, err := st.AuditFor(a.ID, 10)
	if err != nil {
		return fmt.Errorf("failed to load audit trail: %w", err)
	}
	if len(trail) > 0 {
		fmt.Println()
		fmt.Println("Recent changes:")
		for _, e := range trail {
			fmt.Printf("  %s  %-8s %-12s %s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Action, e.Actor, e.Detail)
		}
	}
	return nil
}

func runAnnounceSet(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := resolveAnnouncement(st, args[0])
	if err != nil {
		return err
	}

	var changes []string
	if len(args) > 1 {
		body := strings.Join(args[1:], " ")
		if strings.TrimSpace(body) == "" {
			return fmt.Errorf("announcement body must not be empty")
		}
		a.Body = body
		changes = append(changes, "body")
	}
	if cmd.Flags().Changed("category") {
		a.Category = setCategory
		changes = append(changes, "category="+setCategory)
	}
	if len(changes) == 0 {
		return fmt.Errorf("nothing to change; pass new body text or --category")
	}

	if err := st.Update(a); err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	detail := strings.Join(changes, ", ")
	audit(st, a.ID, types.AuditUpdate, detail)

	logger.Info("Announcement updated", zap.String("id", a.ID), zap.String("changes", detail))

	fmt.Printf("Updated %s (%s)\n", a.ShortID(), detail)
	fmt.Println(preview.Live(parseMarkup(a.Body)))
	return nil
}

func runAnnounceAssign(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := resolveAnnouncement(st, args[0])
	if err != nil {
		return err
	}

	servers := args[1:]
	warnUnknownServers(servers)

	if err := st.Assign(a.ID, servers); err != nil {
		return fmt.Errorf("failed to assign announcement: %w", err)
	}
	detail := "all servers"
	if len(servers) > 0 {
		detail = strings.Join(servers, ", ")
	}
	audit(st, a.ID, types.AuditAssign, detail)

	fmt.Printf("Assigned %s to %s\n", a.ShortID(), detail)
	return nil
}

func runAnnounceRm(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := resolveAnnouncement(st, args[0])
	if err != nil {
		return err
	}

	if err := st.Delete(a.ID); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	audit(st, a.ID, types.AuditDelete, auditSnippet(a.Body))

	logger.Info("Announcement deleted", zap.String("id", a.ID))

	fmt.Printf("Deleted %s\n", a.ShortID())
	return nil
}

func runAnnounceEnable(cmd *cobra.Command, args []string) error {
	return setAnnouncementEnabled(args[0], true)
}

func runAnnounceDisable(cmd *cobra.Command, args []string) error {
	return setAnnouncementEnabled(args[0], false)
}

func setAnnouncementEnabled(ref string, enabled bool) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := resolveAnnouncement(st, ref)
	if err != nil {
		return err
	}

	if err := st.SetEnabled(a.ID, enabled); err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}

	action, verb := types.AuditEnable, "Enabled"
	if !enabled {
		action, verb = types.AuditDisable, "Disabled"
	}
	audit(st, a.ID, action, "")

	fmt.Printf("%s %s\n", verb, a.ShortID())
	return nil
}

func runAnnounceAudit(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	trail, err := st.RecentAudit(auditLimit)
	if err != nil {
		return fmt.Errorf("failed to load audit trail: %w", err)
	}

	if len(trail) == 0 {
		fmt.Println("No audit entries yet.")
		return nil
	}

	fmt.Printf("%-17s %-8s %-12s %-10s %s\n", "WHEN", "ACTION", "ACTOR", "ID", "DETAIL")
	fmt.Println(strings.Repeat("─", 70))
	for _, e := range trail {
		fmt.Printf("%-17s %-8s %-12s %-10s %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Action, e.Actor,
			shortRef(e.AnnouncementID), e.Detail)
	}
	fmt.Println(strings.Repeat("─", 70))
	fmt.Printf("Total: %d entries\n", len(trail))
	return nil
}

// resolveAnnouncement looks an announcement up by full id or unique prefix.
func resolveAnnouncement(st *store.AnnouncementStore, ref string) (types.Announcement, error) {
	id, err := st.ResolveID(ref)
	if err == store.ErrNotFound {
		return types.Announcement{}, fmt.Errorf("no announcement matches '%s'. Use 'kitman announce list' to see ids", ref)
	}
	if err == store.ErrAmbiguousID {
		return types.Announcement{}, fmt.Errorf("'%s' matches more than one announcement; use more of the id", ref)
	}
	if err != nil {
		return types.Announcement{}, err
	}
	return st.Get(id)
}

// warnUnknownServers flags assignments outside the configured server list.
// A typo here means an announcement that silently never plays, so it is
// worth a warning, but operators may also be adding a server before it is
// configured, so it is not an error.
func warnUnknownServers(servers []string) {
	if len(cfg.Servers) == 0 {
		return
	}
	for _, s := range servers {
		known := false
		for _, k := range cfg.Servers {
			if strings.EqualFold(s, k) {
				known = true
				break
			}
		}
		if !known {
			fmt.Printf("Warning: '%s' is not in the configured server list\n", s)
		}
	}
}

// auditSnippet is the plain-text head of a body, for audit detail lines.
func auditSnippet(body string) string {
	plain := markup.PlainText(parseMarkup(body))
	plain = strings.ReplaceAll(plain, "\n", " ")
	if r := []rune(plain); len(r) > 60 {
		plain = string(r[:60]) + "…"
	}
	return plain
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

// shortRef compacts a uuid for table display.
func shortRef(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func init() {
	announceAddCmd.Flags().StringVar(&addCategory, "category", "", "Category grouping (default: general)")
	announceAddCmd.Flags().StringSliceVar(&addServers, "server", nil, "Limit to a server (repeatable; default: all)")
	announceAddCmd.Flags().BoolVar(&addDisabled, "disabled", false, "Create disabled, for staging before going live")

	announceListCmd.Flags().StringVar(&listCategory, "category", "", "Only this category")
	announceListCmd.Flags().StringVar(&listServer, "server", "", "Only announcements that play on this server")
	announceListCmd.Flags().BoolVar(&listEnabled, "enabled", false, "Only announcements currently being served")

	announceSetCmd.Flags().StringVar(&setCategory, "category", "", "New category")

	announceAuditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Number of entries to show")

	announceCmd.AddCommand(announceAddCmd, announceListCmd, announceShowCmd,
		announceSetCmd, announceAssignCmd, announceRmCmd,
		announceEnableCmd, announceDisableCmd, announceAuditCmd)
}
