package logseq

import (
	"context"
	"errors"
	"fmt"
)

const (
	methodDatascriptQuery     = "logseq.DB.datascriptQuery"
	methodQ                   = "logseq.DB.q"
	methodGetBlock            = "logseq.Editor.getBlock"
	methodUpdateBlock         = "logseq.Editor.updateBlock"
	methodUpsertBlockProperty = "logseq.Editor.upsertBlockProperty"
	methodRemoveBlockProperty = "logseq.Editor.removeBlockProperty"
	methodCreatePage          = "logseq.Editor.createPage"
	methodRenamePage          = "logseq.Editor.renamePage"
	methodGetPage             = "logseq.Editor.getPage"
	methodGetPageBlocksTree   = "logseq.Editor.getPageBlocksTree"
)

type Block struct {
	ID         int64          `json:"id"`
	UUID       string         `json:"uuid"`
	Content    string         `json:"content"`
	Properties map[string]any `json:"properties,omitempty"`
}

type Page struct {
	ID           int64  `json:"id"`
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
}

// DatascriptQuery runs a raw datalog query and returns the decoded result set.
func (c *Client) DatascriptQuery(ctx context.Context, query string) ([]any, error) {
	return c.queryList(ctx, methodDatascriptQuery, query)
}

// SimpleQuery runs a simple (DSL) query such as (page-property :type "Person").
func (c *Client) SimpleQuery(ctx context.Context, query string) ([]any, error) {
	return c.queryList(ctx, methodQ, query)
}

func (c *Client) queryList(ctx context.Context, method, query string) ([]any, error) {
	var out []any
	if err := c.callInto(ctx, &out, method, query); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBlock(ctx context.Context, uuid string) (*Block, error) {
	var b Block
	if err := c.callInto(ctx, &b, methodGetBlock, uuid); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) UpdateBlock(ctx context.Context, uuid, content string) error {
	_, err := c.Call(ctx, methodUpdateBlock, uuid, content)
	return err
}

func (c *Client) UpsertBlockProperty(ctx context.Context, uuid, key string, value any) error {
	_, err := c.Call(ctx, methodUpsertBlockProperty, uuid, key, value)
	return err
}

func (c *Client) RemoveBlockProperty(ctx context.Context, uuid, key string) error {
	_, err := c.Call(ctx, methodRemoveBlockProperty, uuid, key)
	return err
}

type createPageOptions struct {
	CreateFirstBlock bool `json:"createFirstBlock"`
	Redirect         bool `json:"redirect"`
}

// CreatePage creates a page with a first block carrying properties, without
// navigating the app to it.
func (c *Client) CreatePage(ctx context.Context, name string, properties map[string]string) (*Page, error) {
	if properties == nil {
		properties = map[string]string{}
	}
	var p Page
	err := c.callInto(ctx, &p, methodCreatePage, name, properties, createPageOptions{CreateFirstBlock: true})
	if err != nil {
		return nil, fmt.Errorf("logseq: create page %q: %w", name, err)
	}
	return &p, nil
}

func (c *Client) RenamePage(ctx context.Context, oldName, newName string) error {
	_, err := c.Call(ctx, methodRenamePage, oldName, newName)
	return err
}

func (c *Client) GetPage(ctx context.Context, nameOrUUID string) (*Page, error) {
	var p Page
	if err := c.callInto(ctx, &p, methodGetPage, nameOrUUID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetPageBlocksTree(ctx context.Context, nameOrUUID string) ([]Block, error) {
	var blocks []Block
	if err := c.callInto(ctx, &blocks, methodGetPageBlocksTree, nameOrUUID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return blocks, nil
}
