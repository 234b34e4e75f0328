package router

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ybenhayun/shuk/internal/convstate"
	"github.com/ybenhayun/shuk/internal/model"
	"github.com/ybenhayun/shuk/internal/store"
	"github.com/ybenhayun/shuk/internal/transport"
)

// skipMarker lets a user decline an optional wizard input.
const skipMarker = "-"

// continueWizard feeds free text into the user's active wizard. Failed
// steps either re-prompt (recoverable input errors keep the state) or
// clear the wizard entirely; errorReply encodes that split.
func (r *Router) continueWizard(ctx context.Context, user *model.User, state convstate.State, text string) ([]transport.Message, error) {
	msgs, err := r.wizardStep(ctx, user, state, text)
	if err != nil {
		return r.errorReply(user, err), nil
	}
	return msgs, nil
}

func (r *Router) wizardStep(ctx context.Context, user *model.User, state convstate.State, text string) ([]transport.Message, error) {
	text = strings.TrimSpace(text)

	switch st := state.(type) {
	case convstate.AwaitingItemName:
		if text == "" {
			return nil, store.ErrInvalidInput
		}
		r.conv.Set(user.ID, convstate.AwaitingItemNote{ListID: st.ListID, CategoryKey: st.CategoryKey, Name: text})
		return r.reply(user, "item.ask_note", text), nil

	case convstate.AwaitingItemNote:
		note := text
		if note == skipMarker {
			note = ""
		}
		item, created, err := r.st.Items.Add(st.ListID, st.Name, st.CategoryKey, note, user.ID)
		if err != nil {
			return nil, err
		}
		r.conv.Clear(user.ID)
		r.notifier.Publish("item", "added", item.ID, map[string]any{"name": item.Name, "list_id": st.ListID}, nil)
		if created {
			return r.reply(user, "item.added", item.Name), nil
		}
		return r.reply(user, "item.merged", item.Name), nil

	case convstate.AwaitingNoteText:
		if text == "" {
			return nil, store.ErrInvalidInput
		}
		note, err := r.st.Items.AddNote(st.ItemID, user.ID, text)
		if err != nil {
			return nil, err
		}
		r.conv.Clear(user.ID)
		return r.reply(user, "item.note_added", note.Text), nil

	case convstate.AwaitingListName:
		list, err := r.st.Lists.Create(text, "", user.ID)
		if err != nil {
			return nil, err
		}
		r.conv.Clear(user.ID)
		r.notifier.Publish("list", "created", list.ID, map[string]any{"name": list.Name}, nil)
		return r.reply(user, "list.created", list.Name), nil

	case convstate.AwaitingListRename:
		list, err := r.st.Lists.Rename(st.ListID, text)
		if err != nil {
			return nil, err
		}
		r.conv.Clear(user.ID)
		return r.reply(user, "list.renamed", list.Name), nil

	case convstate.AwaitingCategoryName:
		if err := r.requireAdmin(user); err != nil {
			return nil, err
		}
		key, emoji, nameEN, nameHE, err := parseCategoryDetails(text)
		if err != nil {
			return nil, err
		}
		created, err := r.st.Categories.CreateCustom(key, emoji, nameEN, nameHE, user.ID)
		if err != nil {
			return nil, err
		}
		r.conv.Clear(user.ID)
		r.notifier.Publish("category", "created", created.ID, map[string]any{"key": created.Key}, nil)
		return r.reply(user, "category.created", created.NameEN), nil

	case convstate.AwaitingSuggestionName:
		if text == "" {
			return nil, store.ErrInvalidInput
		}
		r.conv.Set(user.ID, convstate.AwaitingTranslation{CategoryKey: st.CategoryKey, NameEN: text})
		return r.reply(user, "suggestion.ask_translation", text), nil

	case convstate.AwaitingTranslation:
		nameHE := text
		if nameHE == skipMarker {
			nameHE = ""
		}
		sug, err := r.st.Suggestions.SubmitItem(user.ID, st.CategoryKey, st.NameEN, nameHE)
		if err != nil {
			return nil, err
		}
		r.conv.Clear(user.ID)
		r.notifier.NotifyAdmins(ctx, "suggestion.new", sug.NameEN, sug.CategoryKey)
		r.notifier.Publish("suggestion", "submitted", sug.ID, map[string]any{"name": sug.NameEN}, nil)
		return r.reply(user, "suggestion.submitted", sug.NameEN), nil

	case convstate.AwaitingCategorySuggestion:
		key, emoji, nameEN, nameHE, err := parseCategoryDetails(text)
		if err != nil {
			return nil, err
		}
		sug, err := r.st.Suggestions.SubmitCategory(user.ID, key, emoji, nameEN, nameHE)
		if err != nil {
			return nil, err
		}
		r.conv.Clear(user.ID)
		r.notifier.NotifyAdmins(ctx, "suggestion.new_category", sug.NameEN, sug.Key)
		return r.reply(user, "suggestion.submitted", sug.NameEN), nil

	case convstate.AwaitingBroadcast:
		if err := r.requireAdmin(user); err != nil {
			return nil, err
		}
		if text == "" {
			return nil, store.ErrInvalidInput
		}
		sent := r.notifier.Broadcast(ctx, user.ChatID, "broadcast.message", user.DisplayName, text)
		r.conv.Clear(user.ID)
		return r.reply(user, "broadcast.sent", sent), nil

	case convstate.AwaitingAdminCode:
		return r.checkAdminCode(user, text)

	default:
		r.conv.Clear(user.ID)
		return r.mainMenu(user), nil
	}
}

func (r *Router) checkAdminCode(user *model.User, code string) ([]transport.Message, error) {
	r.conv.Clear(user.ID)

	hash, err := r.st.Settings.Get("admin_code_hash")
	if err != nil {
		return nil, err
	}
	if hash == "" {
		return r.reply(user, "admin.not_configured"), nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		r.logger.Info("admin code rejected", "user_id", user.ID)
		return r.reply(user, "admin.bad_code"), nil
	}

	if _, err := r.st.Users.SetRole(user.ID, model.RoleAdmin); err != nil {
		return nil, err
	}
	r.logger.Info("admin code accepted", "user_id", user.ID)
	return r.reply(user, "admin.granted"), nil
}

// parseCategoryDetails parses "key|emoji|english name|hebrew name". The
// hebrew name is optional.
func parseCategoryDetails(text string) (key, emoji, nameEN, nameHE string, err error) {
	parts := strings.Split(text, "|")
	if len(parts) < 3 || len(parts) > 4 {
		return "", "", "", "", fmt.Errorf("want key|emoji|name[|hebrew]: %w", store.ErrInvalidInput)
	}
	key = strings.TrimSpace(parts[0])
	emoji = strings.TrimSpace(parts[1])
	nameEN = strings.TrimSpace(parts[2])
	if len(parts) == 4 {
		nameHE = strings.TrimSpace(parts[3])
	}
	return key, emoji, nameEN, nameHE, nil
}
