package component

// svelteTreeJS reads Svelte's internal component instance off the DOM
// element's $$ marker, present when the app was compiled without the
// "production" option stripping component metadata.
const svelteTreeJS = `
(selector, maxDepth, includeProps) => {
	const root = selector ? document.querySelector(selector) : document.body;
	if (!root) return [];

	const sanitize = (v) => {
		try { return JSON.parse(JSON.stringify(v)); } catch (e) { return '[Unserializable]'; }
	};

	const findInstances = (el, depth, acc) => {
		if (!el || depth > maxDepth) return;
		const key = Object.keys(el).find(k => k.startsWith('__svelte'));
		if (key && el[key]) {
			acc.push({ el, depth, inst: el[key] });
		}
		for (const child of el.children || []) {
			findInstances(child, depth + (key ? 1 : 0), acc);
		}
	};

	const found = [];
	findInstances(root, 0, found);

	return found.map(({ inst, depth }) => {
		const node = {
			name: (inst.constructor && inst.constructor.name) || 'SvelteComponent',
			framework: 'svelte',
			depth: depth,
			children: [],
		};
		if (includeProps && inst.$$ && inst.$$.props) {
			const ctx = inst.$$.ctx || [];
			const props = {};
			for (const [propName, idx] of Object.entries(inst.$$.props)) {
				props[propName] = sanitize(ctx[idx]);
			}
			node.props = props;
		}
		return node;
	});
}
`


