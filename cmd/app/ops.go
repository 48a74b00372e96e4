package main

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func doLogin(ctx context.Context, cfg cliConfig, email, password, tokenName string, out any) error {
	client := newAPIClient(cfg.Server, "")
	return client.request(ctx, http.MethodPost, "/api/auth/login", map[string]any{
		"email":      email,
		"password":   password,
		"mode":       "token",
		"token_name": tokenName,
	}, out)
}

func doRegister(ctx context.Context, cfg cliConfig, email, password string, out any) error {
	client := newAPIClient(cfg.Server, "")
	return client.request(ctx, http.MethodPost, "/api/auth/register", map[string]any{
		"email":    email,
		"password": password,
	}, out)
}

func doWhoAmI(ctx context.Context, cfg cliConfig, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/auth/whoami", nil, out)
}

func doLogout(ctx context.Context, cfg cliConfig) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func doActivityList(ctx context.Context, cfg cliConfig, limit int, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/activity?limit="+strconv.Itoa(limit), nil, out)
}

func doWeavesList(ctx context.Context, cfg cliConfig, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/weaves", nil, out)
}

func doWeavesCreate(ctx context.Context, cfg cliConfig, name, slug string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/weaves", map[string]any{"name": name, "slug": slug}, out)
}

func doWeaveInvite(ctx context.Context, cfg cliConfig, weaveID, userID, role string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/weaves/"+weaveID+"/users", map[string]any{"user_id": userID, "role": role}, out)
}

func doWorldsList(ctx context.Context, cfg cliConfig, weaveID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/worlds"
	if weaveID != "" {
		path = "/api/weaves/" + weaveID + "/worlds"
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doWorldsCreate(ctx context.Context, cfg cliConfig, weaveID, name, slug, description string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/weaves/"+weaveID+"/worlds", map[string]any{
		"name":        name,
		"slug":        slug,
		"description": description,
	}, out)
}

func doWorldsDelete(ctx context.Context, cfg cliConfig, worldID string) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/worlds/"+worldID, nil, nil)
}

func doWorldMembersAdd(ctx context.Context, cfg cliConfig, worldID, userID, role string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/worlds/"+worldID+"/members", map[string]any{"user_id": userID, "role": role}, out)
}

func doWorldMembersList(ctx context.Context, cfg cliConfig, worldID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/worlds/"+worldID+"/members", nil, out)
}

func doEntryTypesList(ctx context.Context, cfg cliConfig, worldID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/worlds/"+worldID+"/entry-types", nil, out)
}

func doEntryTypesCreate(ctx context.Context, cfg cliConfig, worldID, name, slug, parentID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	payload := map[string]any{"name": name, "slug": slug}
	if parentID != "" {
		payload["parent_id"] = parentID
	}
	return client.request(ctx, http.MethodPost, "/api/worlds/"+worldID+"/entry-types", payload, out)
}

func doFieldsList(ctx context.Context, cfg cliConfig, entryTypeID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/entry-types/"+entryTypeID+"/fields", nil, out)
}

func doFieldsCreate(ctx context.Context, cfg cliConfig, entryTypeID, name, fieldType string, temporal, required bool, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/entry-types/"+entryTypeID+"/fields", map[string]any{
		"name":        name,
		"field_type":  fieldType,
		"is_temporal": temporal,
		"is_required": required,
	}, out)
}

func doEntriesList(ctx context.Context, cfg cliConfig, worldID, entryTypeID string, year *int, limit int, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	params := url.Values{}
	if entryTypeID != "" {
		params.Set("entry_type_id", entryTypeID)
	}
	if year != nil {
		params.Set("year", strconv.Itoa(*year))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/worlds/" + worldID + "/entries"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doEntriesCreate(ctx context.Context, cfg cliConfig, worldID string, payload map[string]any, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/worlds/"+worldID+"/entries", payload, out)
}

func doEntriesGet(ctx context.Context, cfg cliConfig, entryID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/entries/"+entryID, nil, out)
}

func doEntriesMove(ctx context.Context, cfg cliConfig, entryID, newParentID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	payload := map[string]any{}
	if newParentID != "" {
		payload["new_parent_id"] = newParentID
	}
	return client.request(ctx, http.MethodPost, "/api/entries/"+entryID+"/move", payload, out)
}

func doEntriesDelete(ctx context.Context, cfg cliConfig, entryID string, recursive bool) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/entries/" + entryID
	if recursive {
		path += "?recursive=true"
	}
	return client.request(ctx, http.MethodDelete, path, nil, nil)
}

func doEntriesChildren(ctx context.Context, cfg cliConfig, entryID string, recursive bool, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/entries/" + entryID + "/children"
	if recursive {
		path += "?recursive=true"
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doEntriesAncestors(ctx context.Context, cfg cliConfig, entryID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/entries/"+entryID+"/ancestors", nil, out)
}

func doValuesSet(ctx context.Context, cfg cliConfig, entryID string, payload map[string]any, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPut, "/api/entries/"+entryID+"/values", payload, out)
}

func doValuesList(ctx context.Context, cfg cliConfig, entryID string, year *int, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/entries/" + entryID + "/values"
	if year != nil {
		path += "?year=" + strconv.Itoa(*year)
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doValuesHistory(ctx context.Context, cfg cliConfig, entryID, fieldID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/entries/"+entryID+"/values/"+fieldID+"/history", nil, out)
}

func doValuesOverlaps(ctx context.Context, cfg cliConfig, entryID, fieldID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/entries/"+entryID+"/values/"+fieldID+"/overlaps", nil, out)
}

func doBlocksList(ctx context.Context, cfg cliConfig, entryID string, year *int, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/entries/" + entryID + "/blocks"
	if year != nil {
		path += "?year=" + strconv.Itoa(*year)
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doBlocksCreate(ctx context.Context, cfg cliConfig, entryID string, payload map[string]any, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/entries/"+entryID+"/blocks", payload, out)
}

func doReferenceTypesList(ctx context.Context, cfg cliConfig, worldID string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/worlds/"+worldID+"/reference-types", nil, out)
}

func doReferenceTypesCreate(ctx context.Context, cfg cliConfig, worldID, name, inverseName string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/worlds/"+worldID+"/reference-types", map[string]any{
		"name":         name,
		"inverse_name": inverseName,
	}, out)
}

func doReferencesList(ctx context.Context, cfg cliConfig, entryID string, incoming bool, year *int, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	params := url.Values{}
	if incoming {
		params.Set("direction", "incoming")
	}
	if year != nil {
		params.Set("year", strconv.Itoa(*year))
	}
	path := "/api/entries/" + entryID + "/references"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doReferencesCreate(ctx context.Context, cfg cliConfig, entryID string, payload map[string]any, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/entries/"+entryID+"/references", payload, out)
}

func doCharacterCounts(ctx context.Context, cfg cliConfig, worldID string, entryIDs []string, out any) error {
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/worlds/"+worldID+"/character-counts", map[string]any{"entry_ids": entryIDs}, out)
}
