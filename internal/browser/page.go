package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/chenmingwei23/smart-dine/internal/crawler"
)

// Page implements crawler.PageQuery over one chromedp tab context. A Page
// scoped to a node re-resolves the node's selector expression on every call,
// which tolerates feed re-renders between lookups.
type Page struct {
	ctx       context.Context
	limiter   *rate.Limiter
	userAgent string
	root      string
}

func newPage(ctx context.Context, limiter *rate.Limiter, userAgent string) *Page {
	return &Page{
		ctx:       ctx,
		limiter:   limiter,
		userAgent: userAgent,
		root:      "document",
	}
}

// Navigate loads url after waiting for the navigation rate budget.
func (p *Page) Navigate(url string) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(p.ctx); err != nil {
			return fmt.Errorf("navigate rate limit: %w", err)
		}
	}
	tasks := chromedp.Tasks{
		emulation.SetUserAgentOverride(p.userAgent),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if err := chromedp.Run(p.ctx, tasks); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until selector's first match is visible or the session
// times out.
func (p *Page) WaitVisible(selector string) error {
	if err := chromedp.Run(p.ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait visible %s: %w", selector, err)
	}
	return nil
}

// Click clicks the first match of selector within this page's scope.
func (p *Page) Click(selector string) error {
	expr := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) return false;
		el.click();
		return true;
	})()`, p.targetExpr(selector))
	var clicked bool
	if err := p.eval(expr, &clicked); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	if !clicked {
		return fmt.Errorf("click %s: no matching element", selector)
	}
	return nil
}

// Text returns the trimmed text content of the first match, "" if none.
func (p *Page) Text(selector string) (string, error) {
	expr := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) return "";
		return (el.textContent || "").trim();
	})()`, p.targetExpr(selector))
	var out string
	if err := p.eval(expr, &out); err != nil {
		return "", fmt.Errorf("text %s: %w", selector, err)
	}
	return out, nil
}

// Texts returns the trimmed text content of every match, skipping empties.
func (p *Page) Texts(selector string) ([]string, error) {
	expr := fmt.Sprintf(`(() => {
		return Array.from(%s.querySelectorAll(%s))
			.map(el => (el.textContent || "").trim())
			.filter(Boolean);
	})()`, p.root, strconv.Quote(selector))
	var out []string
	if err := p.eval(expr, &out); err != nil {
		return nil, fmt.Errorf("texts %s: %w", selector, err)
	}
	return out, nil
}

// Attribute returns the named attribute of the first match, preferring the
// DOM property so links and image sources come back absolutized.
func (p *Page) Attribute(selector, name string) (string, error) {
	expr := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) return "";
		const prop = el[%s];
		if (typeof prop === "string" && prop) return prop;
		return el.getAttribute(%s) || "";
	})()`, p.targetExpr(selector), strconv.Quote(name), strconv.Quote(name))
	var out string
	if err := p.eval(expr, &out); err != nil {
		return "", fmt.Errorf("attribute %s[%s]: %w", selector, name, err)
	}
	return out, nil
}

// Attributes returns the named attribute of every match, skipping empties.
func (p *Page) Attributes(selector, name string) ([]string, error) {
	expr := fmt.Sprintf(`(() => {
		return Array.from(%s.querySelectorAll(%s))
			.map(el => {
				const prop = el[%s];
				if (typeof prop === "string" && prop) return prop;
				return el.getAttribute(%s) || "";
			})
			.filter(Boolean);
	})()`, p.root, strconv.Quote(selector), strconv.Quote(name), strconv.Quote(name))
	var out []string
	if err := p.eval(expr, &out); err != nil {
		return nil, fmt.Errorf("attributes %s[%s]: %w", selector, name, err)
	}
	return out, nil
}

// Label returns the accessible label of the first match.
func (p *Page) Label(selector string) (string, error) {
	return p.Attribute(selector, "aria-label")
}

// Labels returns the accessible labels of every match.
func (p *Page) Labels(selector string) ([]string, error) {
	return p.Attributes(selector, "aria-label")
}

// Each returns one node-scoped Page per match of selector.
func (p *Page) Each(selector string) ([]crawler.PageQuery, error) {
	expr := fmt.Sprintf(`%s.querySelectorAll(%s).length`, p.root, strconv.Quote(selector))
	var count int
	if err := p.eval(expr, &count); err != nil {
		return nil, fmt.Errorf("count %s: %w", selector, err)
	}
	nodes := make([]crawler.PageQuery, 0, count)
	for i := 0; i < count; i++ {
		nodes = append(nodes, &Page{
			ctx:       p.ctx,
			limiter:   p.limiter,
			userAgent: p.userAgent,
			root:      fmt.Sprintf("%s.querySelectorAll(%s)[%d]", p.root, strconv.Quote(selector), i),
		})
	}
	return nodes, nil
}

// ScrollHeight reports the scrollHeight of the first match.
func (p *Page) ScrollHeight(selector string) (int, error) {
	expr := fmt.Sprintf(`(() => {
		const el = %s;
		return el ? el.scrollHeight : 0;
	})()`, p.targetExpr(selector))
	var height int
	if err := p.eval(expr, &height); err != nil {
		return 0, fmt.Errorf("scroll height %s: %w", selector, err)
	}
	return height, nil
}

// ScrollToBottom scrolls the first match to its bottom.
func (p *Page) ScrollToBottom(selector string) error {
	expr := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) return false;
		el.scrollTo(0, el.scrollHeight);
		return true;
	})()`, p.targetExpr(selector))
	var ok bool
	if err := p.eval(expr, &ok); err != nil {
		return fmt.Errorf("scroll %s: %w", selector, err)
	}
	if !ok {
		return fmt.Errorf("scroll %s: no matching element", selector)
	}
	return nil
}

// Sleep pauses without outliving the session.
func (p *Page) Sleep(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := chromedp.Run(p.ctx, chromedp.Sleep(d)); err != nil {
		return fmt.Errorf("sleep: %w", err)
	}
	return nil
}

// targetExpr resolves selector against this page's scope. An empty selector
// targets the scoped node itself.
func (p *Page) targetExpr(selector string) string {
	if selector == "" {
		if p.root == "document" {
			return "document.documentElement"
		}
		return p.root
	}
	return fmt.Sprintf("%s.querySelector(%s)", p.root, strconv.Quote(selector))
}

func (p *Page) eval(expr string, out any) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.ctx, chromedp.Evaluate(expr, out))
}
