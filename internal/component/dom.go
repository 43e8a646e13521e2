package component

// domTreeJS walks the plain DOM tree (tag/class/children) when no framework
// devtools hook is present (spec.md §4.5 degradation policy).
const domTreeJS = `
(selector, maxDepth) => {
	const root = selector ? document.querySelector(selector) : document.body;
	if (!root) return [];

	const walk = (el, depth) => {
		if (!el || depth > maxDepth) return null;
		const rect = el.getBoundingClientRect ? el.getBoundingClientRect() : null;
		const node = {
			name: el.tagName ? el.tagName.toLowerCase() + (el.className && typeof el.className === 'string' ? '.' + el.className.trim().split(/\s+/).join('.') : '') : 'text',
			framework: 'dom',
			depth: depth,
			children: [],
		};
		if (rect) {
			node.x = rect.x; node.y = rect.y; node.width = rect.width; node.height = rect.height;
			node.visible = rect.width > 0 && rect.height > 0;
		}
		for (const child of el.children || []) {
			const c = walk(child, depth + 1);
			if (c) node.children.push(c);
		}
		return node;
	};

	const result = walk(root, 0);
	return result ? [result] : [];
}
`

const domFindByNameJS = `
(name, exact) => {
	const needle = String(name).toLowerCase();
	const els = document.querySelectorAll('*');
	const matches = [];
	for (const el of els) {
		const tag = el.tagName.toLowerCase();
		const isMatch = exact ? tag === needle : tag.includes(needle);
		if (!isMatch) continue;
		const rect = el.getBoundingClientRect();
		matches.push({
			name: tag,
			framework: 'dom',
			x: rect.x, y: rect.y, width: rect.width, height: rect.height,
			visible: rect.width > 0 && rect.height > 0,
		});
		if (matches.length >= 50) break;
	}
	return matches;
}
`
