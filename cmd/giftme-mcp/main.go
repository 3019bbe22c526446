package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// fetchItemRequest mirrors the GiftMe /fetch-item request body.
type fetchItemRequest struct {
	URL           string   `json:"url"`
	Price         *float64 `json:"price,omitempty"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Savings       *float64 `json:"savings,omitempty"`
}

// fetchItemResponse covers both the success and the error body.
type fetchItemResponse struct {
	Title  string `json:"title"`
	Image  string `json:"image"`
	Price  string `json:"price"`
	Source string `json:"source"`
	URL    string `json:"url"`

	Error string `json:"error"`
	Code  string `json:"code"`
}

func main() {
	apiURL := os.Getenv("GIFTME_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:3000"
	}
	apiKey := os.Getenv("GIFTME_API_KEY")

	s := server.NewMCPServer(
		"giftme",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	fetchItemTool := mcp.NewTool("fetch_item",
		mcp.WithDescription("Extract the title, image, price and store of a product page. Provide price, or original_price with savings, when the page hides its price."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The product page URL"),
		),
		mcp.WithNumber("price",
			mcp.Description("Known current price; overrides anything found on the page"),
		),
		mcp.WithNumber("original_price",
			mcp.Description("List price before savings"),
		),
		mcp.WithNumber("savings",
			mcp.Description("Amount saved off original_price"),
		),
	)
	s.AddTool(fetchItemTool, handleFetchItem(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleFetchItem(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := fetchItemRequest{URL: url}
		args := request.GetArguments()
		reqBody.Price = numberArg(args, "price")
		reqBody.OriginalPrice = numberArg(args, "original_price")
		reqBody.Savings = numberArg(args, "savings")

		body, err := json.Marshal(reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/fetch-item", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var item fetchItemResponse
		if err := json.Unmarshal(respBody, &item); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if resp.StatusCode != http.StatusOK {
			errMsg := item.Error
			if errMsg == "" {
				errMsg = fmt.Sprintf("fetch failed with status %d", resp.StatusCode)
			}
			if item.Code != "" {
				errMsg = fmt.Sprintf("[%s] %s", item.Code, errMsg)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(renderItem(item)), nil
	}
}

// numberArg returns a pointer to a numeric tool argument, or nil if absent.
func numberArg(args map[string]any, key string) *float64 {
	v, ok := args[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

func renderItem(item fetchItemResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", item.Title)
	fmt.Fprintf(&sb, "- Price: %s\n", item.Price)
	fmt.Fprintf(&sb, "- Store: %s\n", item.Source)
	if item.Image != "" {
		fmt.Fprintf(&sb, "- Image: %s\n", item.Image)
	}
	fmt.Fprintf(&sb, "- URL: %s\n", item.URL)
	return sb.String()
}
