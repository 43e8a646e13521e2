package component

// angularTreeJS uses ng.getComponent, available when Angular was
// built with devtools instrumentation enabled (default outside production
// builds with optimization).
const angularTreeJS = `
(selector, maxDepth, includeProps) => {
	if (!window.ng || typeof window.ng.getComponent !== 'function') return [];
	const root = selector ? document.querySelector(selector) : document.querySelector('[ng-version]') || document.body;
	if (!root) return [];

	const sanitize = (v) => {
		try { return JSON.parse(JSON.stringify(v)); } catch (e) { return '[Unserializable]'; }
	};

	const nameOf = (comp) => (comp && comp.constructor && comp.constructor.name) || 'AnonymousComponent';

	const walk = (el, depth) => {
		if (!el || depth > maxDepth) return null;
		const comp = window.ng.getComponent(el);
		if (!comp) {
			// No component at this DOM node; recurse into children without
			// incrementing the component-depth counter.
			const children = [];
			for (const childEl of el.children || []) {
				const c = walk(childEl, depth);
				if (c) children.push(c);
			}
			return children.length ? { name: '[fragment]', framework: 'angular', depth: depth, children: children } : null;
		}
		const node = { name: nameOf(comp), framework: 'angular', depth: depth, children: [] };
		if (includeProps) node.props = sanitize(comp);
		for (const childEl of el.children || []) {
			const c = walk(childEl, depth + 1);
			if (c) node.children.push(c);
		}
		return node;
	};

	const result = walk(root, 0);
	return result ? [result] : [];
}
`
