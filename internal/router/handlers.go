package router

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ybenhayun/shuk/internal/action"
	"github.com/ybenhayun/shuk/internal/category"
	"github.com/ybenhayun/shuk/internal/convstate"
	"github.com/ybenhayun/shuk/internal/model"
	"github.com/ybenhayun/shuk/internal/push"
	"github.com/ybenhayun/shuk/internal/store"
	"github.com/ybenhayun/shuk/internal/transport"
)

func (r *Router) dispatch(ctx context.Context, user *model.User, verb, rest string) ([]transport.Message, error) {
	switch verb {
	case "menu", "cancel":
		return r.mainMenu(user), nil
	case "lists":
		return r.handleLists(user)
	case "list":
		return r.handleListOpen(user, rest)
	case "list_new":
		r.conv.Set(user.ID, convstate.AwaitingListName{})
		return r.reply(user, "list.ask_name"), nil
	case "list_ren":
		return r.handleListRename(user, rest)
	case "list_del":
		return r.handleListDelete(user, rest)
	case "list_freeze":
		return r.handleFreeze(ctx, user, rest, true)
	case "list_unfreeze":
		return r.handleFreeze(ctx, user, rest, false)
	case "list_reset":
		return r.handleReset(ctx, user, rest)
	case "cats":
		return r.handleCategories(user, rest)
	case "cat":
		return r.handleCategoryOpen(user, rest)
	case "cat_new":
		if err := r.requireAdmin(user); err != nil {
			return nil, err
		}
		r.conv.Set(user.ID, convstate.AwaitingCategoryName{})
		return r.reply(user, "category.ask_details"), nil
	case "cat_del_item":
		return r.handleTombstone(user, rest)
	case "cat_res_item":
		return r.handleRestore(user, rest)
	case "type":
		return r.handleTypeItem(user, rest)
	case "pick":
		return r.handlePick(ctx, user, rest, false)
	case "pick_note":
		return r.handlePick(ctx, user, rest, true)
	case "item_del":
		return r.handleItemDelete(ctx, user, rest)
	case "item_note":
		return r.handleItemNote(user, rest)
	case "item_status":
		return r.handleItemStatus(user, rest)
	case "sug":
		return r.handleSuggestItem(user, rest)
	case "sug_cat":
		r.conv.Set(user.ID, convstate.AwaitingCategorySuggestion{})
		return r.reply(user, "suggestion.ask_category_details"), nil
	case "sug_pending":
		return r.handlePendingSuggestions(user)
	case "sug_app":
		return r.handleItemSuggestion(ctx, user, rest, true)
	case "sug_rej":
		return r.handleItemSuggestion(ctx, user, rest, false)
	case "sugc_app":
		return r.handleCategorySuggestion(ctx, user, rest, true)
	case "sugc_rej":
		return r.handleCategorySuggestion(ctx, user, rest, false)
	case "tpls":
		return r.handleTemplates(user, rest)
	case "tpl":
		return r.handleApplyTemplate(ctx, user, rest)
	case "sched":
		return r.handleSchedule(user, rest)
	case "bc":
		if err := r.requireAdmin(user); err != nil {
			return nil, err
		}
		r.conv.Set(user.ID, convstate.AwaitingBroadcast{})
		return r.reply(user, "broadcast.ask_text"), nil
	case "admin":
		r.conv.Set(user.ID, convstate.AwaitingAdminCode{})
		return r.reply(user, "admin.ask_code"), nil
	case "dash":
		return r.handleDashboard(user)
	case "lang":
		return r.handleLanguage(user, rest)
	default:
		return r.reply(user, "error.unknown_action"), nil
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id %q: %w", s, store.ErrInvalidInput)
	}
	return id, nil
}

func (r *Router) handleLists(user *model.User) ([]transport.Message, error) {
	lists, err := r.st.Lists.ListActive()
	if err != nil {
		return nil, err
	}

	var rows [][]transport.Button
	for _, l := range lists {
		rows = append(rows, []transport.Button{{
			LabelKey:  "button.open_list",
			LabelArgs: []any{l.Name},
			Action:    action.Encode("list", strconv.FormatInt(l.ID, 10)),
		}})
	}
	rows = append(rows, []transport.Button{
		{LabelKey: "button.new_list", Action: action.Encode("list_new")},
	})
	return r.replyWith(user, "list.overview", []any{len(lists)}, rows), nil
}

func (r *Router) handleListOpen(user *model.User, rest string) ([]transport.Message, error) {
	listID, err := parseID(rest)
	if err != nil {
		return nil, err
	}
	list, err := r.st.Lists.GetByID(listID)
	if err != nil {
		return nil, err
	}
	if list == nil || !list.Active {
		return nil, store.ErrNotFound
	}
	items, err := r.st.Items.ListByList(listID)
	if err != nil {
		return nil, err
	}

	id := strconv.FormatInt(listID, 10)
	var rows [][]transport.Button
	for _, it := range items {
		itemID := strconv.FormatInt(it.ID, 10)
		// While frozen the list is read-only shopping mode: the item label
		// just refreshes the view instead of opening the note wizard.
		labelAction := action.Encode("item_note", itemID)
		if list.Frozen {
			labelAction = action.Encode("list", id)
		}
		row := []transport.Button{{
			LabelKey:  "button.item",
			LabelArgs: []any{it.Name, it.Note},
			Action:    labelAction,
		}}
		if list.Frozen {
			row = append(row,
				transport.Button{LabelKey: "button.mark_bought", Action: action.Encode("item_status", itemID, model.StatusBought)},
				transport.Button{LabelKey: "button.mark_not_found", Action: action.Encode("item_status", itemID, model.StatusNotFound)},
			)
		} else {
			row = append(row, transport.Button{LabelKey: "button.remove_item", Action: action.Encode("item_del", itemID)})
		}
		rows = append(rows, row)
	}

	if !list.Frozen {
		rows = append(rows, []transport.Button{
			{LabelKey: "button.add_items", Action: action.Encode("cats", id)},
			{LabelKey: "button.apply_template", Action: action.Encode("tpls", id)},
		})
	}
	controls := []transport.Button{
		{LabelKey: "button.rename_list", Action: action.Encode("list_ren", id)},
	}
	if list.Kind != model.KindPrimary {
		controls = append(controls, transport.Button{LabelKey: "button.delete_list", Action: action.Encode("list_del", id)})
	}
	rows = append(rows, controls)

	if user.IsAdmin() {
		adminRow := []transport.Button{
			{LabelKey: "button.reset_list", Action: action.Encode("list_reset", id)},
		}
		if list.Frozen {
			adminRow = append(adminRow, transport.Button{LabelKey: "button.unfreeze", Action: action.Encode("list_unfreeze", id)})
		} else {
			adminRow = append(adminRow, transport.Button{LabelKey: "button.freeze", Action: action.Encode("list_freeze", id)})
		}
		rows = append(rows, adminRow)
	}

	key := "list.view"
	if list.Frozen {
		key = "list.view_frozen"
	}
	return r.replyWith(user, key, []any{list.Name, len(items)}, rows), nil
}

func (r *Router) handleListRename(user *model.User, rest string) ([]transport.Message, error) {
	listID, err := parseID(rest)
	if err != nil {
		return nil, err
	}
	r.conv.Set(user.ID, convstate.AwaitingListRename{ListID: listID})
	return r.reply(user, "list.ask_new_name"), nil
}

func (r *Router) handleListDelete(user *model.User, rest string) ([]transport.Message, error) {
	listID, err := parseID(rest)
	if err != nil {
		return nil, err
	}
	if err := r.st.Lists.SoftDelete(listID); err != nil {
		return nil, err
	}
	r.notifier.Publish("list", "deleted", listID, nil, nil)
	return r.reply(user, "list.deleted"), nil
}

func (r *Router) handleFreeze(ctx context.Context, user *model.User, rest string, frozen bool) ([]transport.Message, error) {
	if err := r.requireAdmin(user); err != nil {
		return nil, err
	}
	listID, err := parseID(rest)
	if err != nil {
		return nil, err
	}
	list, err := r.st.Lists.SetFrozen(listID, frozen)
	if err != nil {
		return nil, err
	}

	key, eventAction := "list.frozen", "frozen"
	if !frozen {
		key, eventAction = "list.unfrozen", "unfrozen"
	}
	r.notifier.Broadcast(ctx, user.ChatID, key, list.Name)
	r.notifier.Publish("list", eventAction, list.ID, nil, nil)
	return r.reply(user, key, list.Name), nil
}

func (r *Router) handleReset(ctx context.Context, user *model.User, rest string) ([]transport.Message, error) {
	if err := r.requireAdmin(user); err != nil {
		return nil, err
	}
	listID, err := parseID(rest)
	if err != nil {
		return nil, err
	}
	list, err := r.st.Lists.GetByID(listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, store.ErrNotFound
	}
	count, err := r.st.Lists.Reset(listID)
	if err != nil {
		return nil, err
	}

	r.notifier.Broadcast(ctx, user.ChatID, "list.reset", list.Name)
	r.notifier.Publish("list", "reset", listID, map[string]any{"items_removed": count}, nil)
	return r.reply(user, "list.reset_done", list.Name, count), nil
}

func (r *Router) handleCategories(user *model.User, rest string) ([]transport.Message, error) {
	listID, err := parseID(rest)
	if err != nil {
		return nil, err
	}
	infos, err := r.st.Categories.All()
	if err != nil {
		return nil, err
	}

	id := strconv.FormatInt(listID, 10)
	var rows [][]transport.Button
	for i := 0; i < len(infos); i += 2 {
		row := []transport.Button{categoryButton(infos[i], id)}
		if i+1 < len(infos) {
			row = append(row, categoryButton(infos[i+1], id))
		}
		rows = append(rows, row)
	}
	if user.IsAdmin() {
		rows = append(rows, []transport.Button{
			{LabelKey: "button.new_category", Action: action.Encode("cat_new")},
		})
	}
	return r.replyWith(user, "category.menu", nil, rows), nil
}

func categoryButton(info category.Info, listID string) transport.Button {
	return transport.Button{
		LabelKey:  "button.category",
		LabelArgs: []any{info.Emoji, info.NameEN, info.NameHE},
		Action:    action.Encode("cat", listID, info.Key),
	}
}

func (r *Router) handleCategoryOpen(user *model.User, rest string) ([]transport.Message, error) {
	listID, key, err := r.splitListAndKey(rest)
	if err != nil {
		return nil, err
	}
	names, err := r.st.Categories.EffectiveItems(key, user.Locale)
	if err != nil {
		return nil, err
	}

	id := strconv.FormatInt(listID, 10)
	var rows [][]transport.Button
	for _, name := range names {
		row := []transport.Button{
			{LabelKey: "button.pick_item", LabelArgs: []any{name}, Action: action.Encode("pick", id, key, name)},
			{LabelKey: "button.pick_item_note", Action: action.Encode("pick_note", id, key, name)},
		}
		if user.IsAdmin() {
			row = append(row, transport.Button{LabelKey: "button.hide_item", Action: action.Encode("cat_del_item", key, name)})
		}
		rows = append(rows, row)
	}
	rows = append(rows, []transport.Button{
		{LabelKey: "button.type_item", Action: action.Encode("type", id, key)},
		{LabelKey: "button.suggest_item", Action: action.Encode("sug", key)},
	})
	return r.replyWith(user, "category.items", []any{key, len(names)}, rows), nil
}

// splitListAndKey parses "<listID>_<categoryKey>" where the key itself
// may contain the delimiter.
func (r *Router) splitListAndKey(rest string) (int64, string, error) {
	args := action.Args(rest)
	if len(args) < 2 {
		return 0, "", store.ErrInvalidInput
	}
	listID, err := parseID(args[0])
	if err != nil {
		return 0, "", err
	}
	keys, err := r.st.Categories.Keys()
	if err != nil {
		return 0, "", err
	}
	keyed := rest[len(args[0])+len(action.Delim):]
	key, tail, ok := action.SplitKeyed(keyed, keys)
	if !ok || tail != "" {
		return 0, "", store.ErrNotFound
	}
	return listID, key, nil
}

// splitListKeyAndItem parses "<listID>_<categoryKey>_<itemName>".
func (r *Router) splitListKeyAndItem(rest string) (int64, string, string, error) {
	args := action.Args(rest)
	if len(args) < 3 {
		return 0, "", "", store.ErrInvalidInput
	}
	listID, err := parseID(args[0])
	if err != nil {
		return 0, "", "", err
	}
	keys, err := r.st.Categories.Keys()
	if err != nil {
		return 0, "", "", err
	}
	keyed := rest[len(args[0])+len(action.Delim):]
	key, item, ok := action.SplitKeyed(keyed, keys)
	if !ok || item == "" {
		return 0, "", "", store.ErrNotFound
	}
	return listID, key, item, nil
}

func (r *Router) handleTypeItem(user *model.User, rest string) ([]transport.Message, error) {
	listID, key, err := r.splitListAndKey(rest)
	if err != nil {
		return nil, err
	}
	r.conv.Set(user.ID, convstate.AwaitingItemName{ListID: listID, CategoryKey: key})
	return r.reply(user, "item.ask_name"), nil
}

func (r *Router) handlePick(ctx context.Context, user *model.User, rest string, withNote bool) ([]transport.Message, error) {
	listID, key, name, err := r.splitListKeyAndItem(rest)
	if err != nil {
		return nil, err
	}

	if withNote {
		r.conv.Set(user.ID, convstate.AwaitingItemNote{ListID: listID, CategoryKey: key, Name: name})
		return r.reply(user, "item.ask_note", name), nil
	}

	item, created, err := r.st.Items.Add(listID, name, key, "", user.ID)
	if err != nil {
		return nil, err
	}
	r.notifier.Publish("item", "added", item.ID, map[string]any{"name": item.Name, "list_id": listID}, nil)
	if created {
		return r.reply(user, "item.added", item.Name), nil
	}
	return r.reply(user, "item.merged", item.Name), nil
}

func (r *Router) handleItemDelete(ctx context.Context, user *model.User, rest string) ([]transport.Message, error) {
	itemID, err := parseID(rest)
	if err != nil {
		return nil, err
	}
	if err := r.st.Items.Remove(itemID); err != nil {
		return nil, err
	}
	r.notifier.Publish("item", "removed", itemID, nil, nil)
	return r.reply(user, "item.removed"), nil
}

func (r *Router) handleItemNote(user *model.User, rest string) ([]transport.Message, error) {
	itemID, err := parseID(rest)
	if err != nil {
		return nil, err
	}
	item, err := r.st.Items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, store.ErrNotFound
	}
	r.conv.Set(user.ID, convstate.AwaitingNoteText{ItemID: itemID})
	return r.reply(user, "item.ask_note", item.Name), nil
}

func (r *Router) handleItemStatus(user *model.User, rest string) ([]transport.Message, error) {
	args := action.Args(rest)
	if len(args) < 2 {
		return nil, store.ErrInvalidInput
	}
	itemID, err := parseID(args[0])
	if err != nil {
		return nil, err
	}
	// Status names contain the delimiter ("not_found"); rejoin the tail.
	status := rest[len(args[0])+len(action.Delim):]
	if err := r.st.Items.MarkStatus(itemID, user.ID, status); err != nil {
		return nil, err
	}
	return r.reply(user, "item.status_set", status), nil
}

func (r *Router) handleTombstone(user *model.User, rest string) ([]transport.Message, error) {
	if err := r.requireAdmin(user); err != nil {
		return nil, err
	}
	keys, err := r.st.Categories.Keys()
	if err != nil {
		return nil, err
	}
	key, name, ok := action.SplitKeyed(rest, keys)
	if !ok || name == "" {
		return nil, store.ErrNotFound
	}
	if err := r.st.Categories.Tombstone(key, name, user.ID); err != nil {
		return nil, err
	}
	return r.reply(user, "category.item_hidden", name), nil
}

func (r *Router) handleRestore(user *model.User, rest string) ([]transport.Message, error) {
	if err := r.requireAdmin(user); err != nil {
		return nil, err
	}
	keys, err := r.st.Categories.Keys()
	if err != nil {
		return nil, err
	}
	key, name, ok := action.SplitKeyed(rest, keys)
	if !ok || name == "" {
		return nil, store.ErrNotFound
	}
	if err := r.st.Categories.Restore(key, name); err != nil {
		return nil, err
	}
	return r.reply(user, "category.item_restored", name), nil
}

func (r *Router) handleSuggestItem(user *model.User, rest string) ([]transport.Message, error) {
	keys, err := r.st.Categories.Keys()
	if err != nil {
		return nil, err
	}
	key, tail, ok := action.SplitKeyed(rest, keys)
	if !ok || tail != "" {
		return nil, store.ErrNotFound
	}
	r.conv.Set(user.ID, convstate.AwaitingSuggestionName{CategoryKey: key})
	return r.reply(user, "suggestion.ask_item_name", key), nil
}

func (r *Router) handlePendingSuggestions(user *model.User) ([]transport.Message, error) {
	if err := r.requireAdmin(user); err != nil {
		return nil, err
	}
	items, err := r.st.Suggestions.ListPendingItems()
	if err != nil {
		return nil, err
	}
	cats, err := r.st.Suggestions.ListPendingCategories()
	if err != nil {
		return nil, err
	}

	var rows [][]transport.Button
	for _, s := range items {
		id := strconv.FormatInt(s.ID, 10)
		rows = append(rows, []transport.Button{
			{LabelKey: "button.suggested_item", LabelArgs: []any{s.NameEN, s.CategoryKey}, Action: action.Encode("sug_app", id)},
			{LabelKey: "button.approve", Action: action.Encode("sug_app", id)},
			{LabelKey: "button.reject", Action: action.Encode("sug_rej", id)},
		})
	}
	for _, s := range cats {
		id := strconv.FormatInt(s.ID, 10)
		rows = append(rows, []transport.Button{
			{LabelKey: "button.suggested_category", LabelArgs: []any{s.NameEN, s.Key}, Action: action.Encode("sugc_app", id)},
			{LabelKey: "button.approve", Action: action.Encode("sugc_app", id)},
			{LabelKey: "button.reject", Action: action.Encode("sugc_rej", id)},
		})
	}
	return r.replyWith(user, "suggestion.pending", []any{len(items) + len(cats)}, rows), nil
}

func (r *Router) handleItemSuggestion(ctx context.Context, user *model.User, rest string, approve bool) ([]transport.Message, error) {
	if err := r.requireAdmin(user); err != nil {
		return nil, err
	}
	id, err := parseID(rest)
	if err != nil {
		return nil, err
	}

	var sug *model.ItemSuggestion
	if approve {
		sug, err = r.st.Suggestions.ApproveItem(id, user.ID)
	} else {
		sug, err = r.st.Suggestions.RejectItem(id, user.ID)
	}
	if err != nil {
		return nil, err
	}

	proposerKey := "suggestion.approved"
	eventAction := "approved"
	if !approve {
		proposerKey = "suggestion.rejected"
		eventAction = "rejected"
	}
	r.notifyProposer(ctx, sug.ProposerID, proposerKey, sug.NameEN)
	r.notifier.Publish("suggestion", eventAction, sug.ID, map[string]any{"name": sug.NameEN}, &push.Payload{
		Title: "Suggestion " + eventAction,
		Body:  sug.NameEN,
		Tag:   "suggestion",
	})
	return r.reply(user, "suggestion.resolved", sug.NameEN), nil
}

func (r *Router) handleCategorySuggestion(ctx context.Context, user *model.User, rest string, approve bool) ([]transport.Message, error) {
	if err := r.requireAdmin(user); err != nil {
		return nil, err
	}
	id, err := parseID(rest)
	if err != nil {
		return nil, err
	}

	var sug *model.CategorySuggestion
	if approve {
		sug, err = r.st.Suggestions.ApproveCategory(id, user.ID)
	} else {
		sug, err = r.st.Suggestions.RejectCategory(id, user.ID)
	}
	if err != nil {
		return nil, err
	}

	proposerKey := "suggestion.approved"
	eventAction := "approved"
	if !approve {
		proposerKey = "suggestion.rejected"
		eventAction = "rejected"
	}
	r.notifyProposer(ctx, sug.ProposerID, proposerKey, sug.NameEN)
	r.notifier.Publish("category_suggestion", eventAction, sug.ID, map[string]any{"key": sug.Key}, nil)
	return r.reply(user, "suggestion.resolved", sug.NameEN), nil
}

func (r *Router) notifyProposer(ctx context.Context, proposerID int64, key string, args ...any) {
	proposer, err := r.st.Users.GetByID(proposerID)
	if err != nil || proposer == nil {
		r.logger.Error("load proposer", "proposer_id", proposerID, "error", err)
		return
	}
	r.notifier.NotifyUser(ctx, proposer.ChatID, key, args...)
}

func (r *Router) handleTemplates(user *model.User, rest string) ([]transport.Message, error) {
	var listID int64
	if rest == "" {
		primary, err := r.st.Lists.GetPrimary()
		if err != nil {
			return nil, err
		}
		listID = primary.ID
	} else {
		var err error
		listID, err = parseID(rest)
		if err != nil {
			return nil, err
		}
	}

	templates, err := r.st.Templates.ListVisible(user.ID)
	if err != nil {
		return nil, err
	}

	id := strconv.FormatInt(listID, 10)
	var rows [][]transport.Button
	for _, tmpl := range templates {
		rows = append(rows, []transport.Button{{
			LabelKey:  "button.template",
			LabelArgs: []any{tmpl.Name, tmpl.NameHE},
			Action:    action.Encode("tpl", strconv.FormatInt(tmpl.ID, 10), id),
		}})
	}
	return r.replyWith(user, "template.menu", []any{len(templates)}, rows), nil
}

func (r *Router) handleApplyTemplate(ctx context.Context, user *model.User, rest string) ([]transport.Message, error) {
	args := action.Args(rest)
	if len(args) != 2 {
		return nil, store.ErrInvalidInput
	}
	templateID, err := parseID(args[0])
	if err != nil {
		return nil, err
	}
	listID, err := parseID(args[1])
	if err != nil {
		return nil, err
	}

	added, err := r.st.Templates.Apply(templateID, listID, nil, user.ID)
	if err != nil {
		return nil, err
	}
	r.notifier.Publish("template", "applied", templateID, map[string]any{"list_id": listID, "items_added": added}, nil)
	return r.reply(user, "template.applied", added), nil
}

func (r *Router) handleSchedule(user *model.User, rest string) ([]transport.Message, error) {
	if err := r.requireAdmin(user); err != nil {
		return nil, err
	}
	args := action.Args(rest)
	switch len(args) {
	case 1:
		// Offer the weekday presets for this list.
		listID, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		id := strconv.FormatInt(listID, 10)
		var rows [][]transport.Button
		for wd := 0; wd <= 6; wd++ {
			rows = append(rows, []transport.Button{{
				LabelKey:  "button.schedule_day",
				LabelArgs: []any{wd},
				Action:    action.Encode("sched", id, strconv.Itoa(wd), "18:00"),
			}})
		}
		return r.replyWith(user, "schedule.ask_day", nil, rows), nil
	case 3:
		listID, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		weekday, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("weekday %q: %w", args[1], store.ErrInvalidInput)
		}
		sched, err := r.st.Schedules.Set(listID, weekday, args[2], user.ID)
		if err != nil {
			return nil, err
		}
		r.notifier.Publish("schedule", "set", sched.ID, map[string]any{"list_id": listID}, nil)
		return r.reply(user, "schedule.set", weekday, args[2]), nil
	default:
		return nil, store.ErrInvalidInput
	}
}

func (r *Router) handleLanguage(user *model.User, rest string) ([]transport.Message, error) {
	if rest == "" {
		rows := [][]transport.Button{{
			{LabelKey: "button.lang_en", Action: action.Encode("lang", "en")},
			{LabelKey: "button.lang_he", Action: action.Encode("lang", "he")},
		}}
		return r.replyWith(user, "lang.ask", nil, rows), nil
	}
	if rest != "en" && rest != "he" {
		return nil, store.ErrInvalidInput
	}
	if err := r.st.Users.SetLocale(user.ID, rest); err != nil {
		return nil, err
	}
	return r.reply(user, "lang.set", rest), nil
}

func (r *Router) handleDashboard(user *model.User) ([]transport.Message, error) {
	if err := r.requireAdmin(user); err != nil {
		return nil, err
	}
	if r.links == nil {
		return r.reply(user, "dashboard.unavailable"), nil
	}
	token, err := r.links.Mint(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return r.reply(user, "dashboard.link", r.consoleURL+"/?token="+token), nil
}
