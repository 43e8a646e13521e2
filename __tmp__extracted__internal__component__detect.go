package component

import (
	"context"

	"github.com/go-rod/rod"
)

const detectFrameworkJS = `
(selector) => {
	const root = selector ? document.querySelector(selector) : document.body;
	if (!root) return 'none';

	const hasReact = Object.keys(root).some(k => k.startsWith('__reactFiber') || k.startsWith('__reactContainer'));
	if (hasReact) return 'react';

	if (root.__vue_app__ || root.__vue__ || root._vnode) return 'vue';

	if (window.ng && typeof window.ng.probe === 'function') {
		try {
			if (window.ng.probe(root)) return 'angular';
		} catch (e) {}
	}
	if (root.hasAttribute && root.hasAttribute('ng-version')) return 'angular';

	const svelteKey = Object.keys(root).find(k => k.startsWith('__svelte'));
	if (svelteKey || root.__svelte_meta) return 'svelte';

	return 'dom';
}
`

// DetectFramework inspects the selector-scoped subtree for a framework
// signature (spec.md §4.5 detection). Returns component.DOM when none is
// found; never errors, matching the degrade-gracefully contract.
func DetectFramework(ctx context.Context, page *rod.Page, selector string) string {
	res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           detectFrameworkJS,
		JSArgs:       []interface{}{selector},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil || res == nil || res.Value.Nil() {
		return DOM
	}
	fw := res.Value.String()
	if fw == "" || fw == "none" {
		return DOM
	}
	return fw
}

func unsupported(reason string) Unsupported {
	return Unsupported{Supported: false, Reason: reason}
}


